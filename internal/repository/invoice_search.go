package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	s "github.com/iliyamo/invoice-dashboard/internal/schema"
)

// InvoiceSearchQuery defines the free-text filter and pagination for the
// invoices table. Page is 1-based.
type InvoiceSearchQuery struct {
	Query    string
	Page     int
	PageSize int
}

// invoiceMatch is true when any of customer name, customer email, status,
// amount or date contains $1 (case-insensitive).
var invoiceMatch = fmt.Sprintf(`(%s ILIKE $1 OR %s ILIKE $1 OR %s::text ILIKE $1 OR %s::text ILIKE $1 OR %s::text ILIKE $1)`,
	s.Customers.Name, s.Customers.Email, s.Invoices.Status, s.Invoices.Amount, s.Invoices.Date)

var invoiceJoin = fmt.Sprintf(`%s JOIN %s ON %s = %s`,
	s.Invoices.TableName(), s.Customers.TableName(), s.Invoices.CustomerID, s.Customers.ID)

var (
	qInvoiceSearchCount = `SELECT COUNT(*) FROM ` + invoiceJoin + ` WHERE ` + invoiceMatch

	qInvoiceSearch = fmt.Sprintf(`SELECT
			%s,
			%s,
			%s,
			%s,
			%s,
			to_char(%s, 'YYYY-MM-DD') AS date,
			%s,
			%s::text AS status
		FROM %s
		WHERE %s
		ORDER BY %s DESC, %s
		LIMIT $2 OFFSET $3`,
		s.Invoices.ID, s.Invoices.CustomerID, s.Customers.Name, s.Customers.Email, s.Customers.ImageURL,
		s.Invoices.Date, s.Invoices.Amount, s.Invoices.Status,
		invoiceJoin, invoiceMatch, s.Invoices.Date, s.Invoices.ID)
)

// Search returns one page of invoices matching q.Query, newest first.
func (r *InvoiceRepo) Search(ctx context.Context, q InvoiceSearchQuery) ([]model.InvoicesTable, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.PageSize
	offset := (page - 1) * q.PageSize

	rows, err := r.db.QueryContext(ctx, qInvoiceSearch, containsPattern(q.Query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.InvoicesTable, 0, limit)
	for rows.Next() {
		var d model.InvoicesTable
		var status string
		if err := rows.Scan(
			&d.ID,
			&d.CustomerID,
			&d.Name,
			&d.Email,
			&d.ImageURL,
			&d.Date,
			&d.Amount,
			&status,
		); err != nil {
			return nil, err
		}
		d.Status = model.InvoiceStatus(status)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountMatching returns how many invoices match query, using the same
// predicate as Search.
func (r *InvoiceRepo) CountMatching(ctx context.Context, query string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, qInvoiceSearchCount, containsPattern(query)).Scan(&total)
	return total, err
}
