package model

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "pending"
	StatusPaid    InvoiceStatus = "paid"
)

// DateLayout is the ISO calendar date format used for invoices.date.
const DateLayout = "2006-01-02"

// Invoice is a row of the `invoices` table. Amounts are stored in
// minor currency units (cents) to avoid floating point rounding.
//
// Fields:
//  ID          – uuid primary key.
//  CustomerID  – references customers.id.
//  AmountCents – amount in cents, always > 0.
//  Status      – pending or paid.
//  Date        – calendar date the invoice was issued (UTC, truncated to day).
type Invoice struct {
	ID          string        // invoices.id
	CustomerID  string        // invoices.customer_id
	AmountCents int64         // invoices.amount
	Status      InvoiceStatus // invoices.status
	Date        time.Time     // invoices.date
}

// LatestInvoiceRaw is an invoice joined with its customer, amount still in cents.
type LatestInvoiceRaw struct {
	ID          string
	Name        string
	Email       string
	ImageURL    string
	AmountCents int64
}

// LatestInvoice is the display shape of LatestInvoiceRaw.
type LatestInvoice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
	Amount   string `json:"amount"`
}

// InvoicesTable is one row of the filtered, paginated invoice search.
// Amount stays in cents; Date is an ISO calendar date.
type InvoicesTable struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	ImageURL   string        `json:"image_url"`
	Date       string        `json:"date"`
	Amount     int64         `json:"amount"`
	Status     InvoiceStatus `json:"status"`
}

// InvoiceForm is the edit-form shape of a single invoice; Amount is the
// decimal currency value (cents / 100).
type InvoiceForm struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Amount     float64       `json:"amount"`
	Status     InvoiceStatus `json:"status"`
}

// CardData is the display shape of the dashboard summary cards.
type CardData struct {
	NumberOfCustomers    int64  `json:"number_of_customers"`
	NumberOfInvoices     int64  `json:"number_of_invoices"`
	TotalPaidInvoices    string `json:"total_paid_invoices"`
	TotalPendingInvoices string `json:"total_pending_invoices"`
}
