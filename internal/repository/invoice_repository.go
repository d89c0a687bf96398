// This file contains the InvoiceRepo type which encapsulates the SQL for
// invoices: single-row reads and writes, the latest-invoices list and the
// aggregates behind the dashboard cards. The filtered table lives in
// invoice_search.go.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	s "github.com/iliyamo/invoice-dashboard/internal/schema"
)

// InvoiceRepo provides CRUD operations for invoices.
type InvoiceRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewInvoiceRepo constructs a new InvoiceRepo with the provided DB handle.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

var (
	qInvoiceLatest = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s DESC LIMIT $1`,
		s.Invoices.ID, s.Customers.Name, s.Customers.Email, s.Customers.ImageURL, s.Invoices.Amount,
		invoiceJoin, s.Invoices.Date)

	qInvoiceByID = fmt.Sprintf(`SELECT %s, %s, %s, %s::text, %s FROM %s WHERE %s = $1`,
		s.Invoices.ID.Name, s.Invoices.CustomerID.Name, s.Invoices.Amount.Name, s.Invoices.Status.Name, s.Invoices.Date.Name,
		s.Invoices.TableName(), s.Invoices.ID.Name)

	qInvoiceCount = fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.Invoices.TableName())

	qInvoiceTotals = fmt.Sprintf(`SELECT
			COALESCE(SUM(%[1]s) FILTER (WHERE %[2]s = 'paid'), 0),
			COALESCE(SUM(%[1]s) FILTER (WHERE %[2]s = 'pending'), 0)
		FROM %[3]s`,
		s.Invoices.Amount.Name, s.Invoices.Status.Name, s.Invoices.TableName())

	qInvoiceInsert = fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		s.Invoices.TableName(), s.Invoices.ID.Name, s.Invoices.CustomerID.Name, s.Invoices.Amount.Name,
		s.Invoices.Status.Name, s.Invoices.Date.Name)

	qInvoiceUpdate = fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4`,
		s.Invoices.TableName(), s.Invoices.CustomerID.Name, s.Invoices.Amount.Name, s.Invoices.Status.Name,
		s.Invoices.ID.Name)

	qInvoiceDelete = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, s.Invoices.TableName(), s.Invoices.ID.Name)
)

// Latest returns the newest invoices joined with their customer, at most limit rows.
func (r *InvoiceRepo) Latest(ctx context.Context, limit int) ([]model.LatestInvoiceRaw, error) {
	rows, err := r.db.QueryContext(ctx, qInvoiceLatest, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LatestInvoiceRaw, 0, limit)
	for rows.Next() {
		var li model.LatestInvoiceRaw
		if err := rows.Scan(&li.ID, &li.Name, &li.Email, &li.ImageURL, &li.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single invoice. ErrInvoiceNotFound is returned when the
// id is not a UUID or no row matches.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (model.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Invoice{}, ErrInvoiceNotFound
	}
	var inv model.Invoice
	var status string
	err := r.db.QueryRowContext(ctx, qInvoiceByID, id).Scan(&inv.ID, &inv.CustomerID, &inv.AmountCents, &status, &inv.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invoice{}, ErrInvoiceNotFound
	}
	if err != nil {
		return model.Invoice{}, err
	}
	inv.Status = model.InvoiceStatus(status)
	return inv, nil
}

// Count returns the total number of invoices.
func (r *InvoiceRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, qInvoiceCount).Scan(&n)
	return n, err
}

// StatusTotals returns the summed amounts, in cents, of paid and pending
// invoices. Both are zero on an empty table.
func (r *InvoiceRepo) StatusTotals(ctx context.Context) (paid, pending int64, err error) {
	err = r.db.QueryRowContext(ctx, qInvoiceTotals).Scan(&paid, &pending)
	return paid, pending, err
}

// Create inserts inv with a freshly generated id and returns that id.
// A reference to an unknown customer yields ErrCustomerNotFound.
func (r *InvoiceRepo) Create(ctx context.Context, inv model.Invoice) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, qInvoiceInsert, id, inv.CustomerID, inv.AmountCents, string(inv.Status), inv.Date)
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", fmt.Errorf("%w: %s", ErrCustomerNotFound, inv.CustomerID)
		}
		return "", err
	}
	return id, nil
}

// Update overwrites customer, amount and status of the invoice inv.ID. The
// date is left untouched. Updating an id that does not exist is a no-op.
func (r *InvoiceRepo) Update(ctx context.Context, inv model.Invoice) error {
	if _, err := uuid.Parse(inv.ID); err != nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, qInvoiceUpdate, inv.CustomerID, inv.AmountCents, string(inv.Status), inv.ID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, inv.CustomerID)
	}
	return err
}

// Delete removes the invoice with the given id. Deleting an absent row is
// not an error.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, qInvoiceDelete, id)
	return err
}
