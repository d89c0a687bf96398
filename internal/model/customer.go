package model

// Customer is a row of the `customers` table. Invoices reference
// customers through invoices.customer_id.
//
// Fields:
//  ID       – uuid primary key.
//  Name     – customer name.
//  Email    – contact email.
//  ImageURL – avatar reference rendered next to the customer.
type Customer struct {
	ID       string `json:"id"`        // customers.id
	Name     string `json:"name"`      // customers.name
	Email    string `json:"email"`     // customers.email
	ImageURL string `json:"image_url"` // customers.image_url
}

// CustomerField is the id/name pair used to populate customer pickers.
type CustomerField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerTotals is a customer row augmented with invoice aggregates, in
// cents, as read from the database.
type CustomerTotals struct {
	Customer
	TotalInvoices int64
	TotalPending  int64
	TotalPaid     int64
}

// FormattedCustomersTable is the display shape of the customers table:
// totals are currency strings.
type FormattedCustomersTable struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"image_url"`
	TotalInvoices int64  `json:"total_invoices"`
	TotalPending  string `json:"total_pending"`
	TotalPaid     string `json:"total_paid"`
}
