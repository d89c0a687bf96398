// This file holds the customer queries: the picker list, the count behind
// the dashboard cards and the searchable customers table with per-customer
// invoice aggregates.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	s "github.com/iliyamo/invoice-dashboard/internal/schema"
)

// CustomerRepo encapsulates all database queries related to customers.
// Customers are created and edited outside this service, so the repo is
// read-only.
type CustomerRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

var (
	qCustomerCount = fmt.Sprintf("SELECT COUNT(*) FROM %s", s.Customers.TableName())

	qCustomerNames = fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC",
		s.Names(s.Customers.ID, s.Customers.Name), s.Customers.TableName(), s.Customers.Name)

	// Conditional aggregation over a LEFT JOIN so customers without
	// invoices still appear with zero totals.
	qCustomerTotals = fmt.Sprintf(`SELECT
		%[1]s, %[2]s, %[3]s, %[4]s,
		COUNT(%[5]s) AS total_invoices,
		COALESCE(SUM(CASE WHEN %[6]s = 'pending' THEN %[7]s ELSE 0 END), 0) AS total_pending,
		COALESCE(SUM(CASE WHEN %[6]s = 'paid' THEN %[7]s ELSE 0 END), 0) AS total_paid
	FROM %[8]s
	LEFT JOIN %[9]s ON %[1]s = %[10]s
	WHERE %[2]s ILIKE $1 OR %[3]s ILIKE $1
	GROUP BY %[1]s, %[2]s, %[3]s, %[4]s
	ORDER BY %[2]s ASC`,
		s.Customers.ID, s.Customers.Name, s.Customers.Email, s.Customers.ImageURL,
		s.Invoices.ID, s.Invoices.Status, s.Invoices.Amount,
		s.Customers.TableName(), s.Invoices.TableName(), s.Invoices.CustomerID)
)

// Count returns the number of customers.
func (r *CustomerRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, qCustomerCount).Scan(&n)
	return n, err
}

// ListNames returns id and name of every customer ordered by name.
func (r *CustomerRepo) ListNames(ctx context.Context) ([]model.CustomerField, error) {
	rows, err := r.db.QueryContext(ctx, qCustomerNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CustomerField
	for rows.Next() {
		var f model.CustomerField
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchWithTotals returns customers whose name or email contains query
// (case-insensitive) along with their invoice count and pending/paid totals
// in cents.
func (r *CustomerRepo) SearchWithTotals(ctx context.Context, query string) ([]model.CustomerTotals, error) {
	rows, err := r.db.QueryContext(ctx, qCustomerTotals, containsPattern(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CustomerTotals
	for rows.Next() {
		var ct model.CustomerTotals
		if err := rows.Scan(
			&ct.ID,
			&ct.Name,
			&ct.Email,
			&ct.ImageURL,
			&ct.TotalInvoices,
			&ct.TotalPending,
			&ct.TotalPaid,
		); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
