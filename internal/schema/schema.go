// Package schema declares the relations backing the dashboard: users,
// customers, invoices and revenue. Each relation is exposed as a typed value
// whose fields are the table's columns, so queries can reference
// `schema.Invoices.Amount` instead of a raw "invoices.amount" string. The
// package also renders the PostgreSQL DDL used by the migrate command.
package schema

import "strings"

// Column describes a single column of a relation. String returns the
// table-qualified name used inside SQL statements.
type Column struct {
	Table      string // owning table name
	Name       string // column name
	Type       string // SQL type, e.g. UUID, TEXT, INTEGER
	NotNull    bool   // NOT NULL constraint
	PrimaryKey bool   // PRIMARY KEY constraint
	Default    string // DEFAULT expression, empty when absent
	References *Column
}

// String returns "table.column".
func (c Column) String() string { return c.Table + "." + c.Name }

// Enum is a named PostgreSQL enum type.
type Enum struct {
	Name   string
	Values []string
}

// Contains reports whether v is one of the enum's labels.
func (e Enum) Contains(v string) bool {
	for _, x := range e.Values {
		if x == v {
			return true
		}
	}
	return false
}

// UniqueIndex is a unique index over one or more columns of a table.
type UniqueIndex struct {
	Name    string
	Table   string
	Columns []string
}

// Relation is implemented by every table declaration.
type Relation interface {
	TableName() string
	Columns() []Column
}

// InvoiceStatus is the enum restricting invoices.status.
var InvoiceStatus = Enum{Name: "invoice_status", Values: []string{"pending", "paid"}}

func col(table, name, typ string, notNull bool) Column {
	return Column{Table: table, Name: name, Type: typ, NotNull: notNull}
}

func pk(c Column) Column { c.PrimaryKey = true; return c }

func def(c Column, expr string) Column { c.Default = expr; return c }

// UsersTable declares the users relation.
type UsersTable struct {
	ID, Name, Email, Password Column
}

func (UsersTable) TableName() string { return "users" }

func (t UsersTable) Columns() []Column {
	return []Column{t.ID, t.Name, t.Email, t.Password}
}

// CustomersTable declares the customers relation.
type CustomersTable struct {
	ID, Name, Email, ImageURL Column
}

func (CustomersTable) TableName() string { return "customers" }

func (t CustomersTable) Columns() []Column {
	return []Column{t.ID, t.Name, t.Email, t.ImageURL}
}

// InvoicesTable declares the invoices relation. Amount is stored in cents.
type InvoicesTable struct {
	ID, CustomerID, Amount, Status, Date Column
}

func (InvoicesTable) TableName() string { return "invoices" }

func (t InvoicesTable) Columns() []Column {
	return []Column{t.ID, t.CustomerID, t.Amount, t.Status, t.Date}
}

// RevenueTable declares the revenue relation (one row per month).
type RevenueTable struct {
	Month, Revenue Column
}

func (RevenueTable) TableName() string { return "revenue" }

func (t RevenueTable) Columns() []Column { return []Column{t.Month, t.Revenue} }

var (
	Users = UsersTable{
		ID:       pk(def(col("users", "id", "UUID", true), "gen_random_uuid()")),
		Name:     col("users", "name", "TEXT", true),
		Email:    col("users", "email", "TEXT", true),
		Password: col("users", "password", "TEXT", true),
	}

	Customers = CustomersTable{
		ID:       pk(def(col("customers", "id", "UUID", true), "gen_random_uuid()")),
		Name:     col("customers", "name", "TEXT", true),
		Email:    col("customers", "email", "TEXT", true),
		ImageURL: col("customers", "image_url", "TEXT", true),
	}

	Invoices = InvoicesTable{
		ID:         pk(def(col("invoices", "id", "UUID", true), "gen_random_uuid()")),
		CustomerID: col("invoices", "customer_id", "UUID", true),
		Amount:     col("invoices", "amount", "INTEGER", true),
		Status:     def(col("invoices", "status", InvoiceStatus.Name, true), "'pending'"),
		Date:       col("invoices", "date", "DATE", true),
	}

	Revenue = RevenueTable{
		Month:   col("revenue", "month", "TEXT", true),
		Revenue: col("revenue", "revenue", "DOUBLE PRECISION", true),
	}

	// UsersEmailUnique enforces one account per email address.
	UsersEmailUnique = UniqueIndex{Name: "users_email_key", Table: "users", Columns: []string{"email"}}
)

func init() {
	ref := Customers.ID
	Invoices.CustomerID.References = &ref
}

// Relations lists all tables in foreign-key order (referenced tables first).
func Relations() []Relation {
	return []Relation{Users, Customers, Invoices, Revenue}
}

// Names joins column references into a select list.
func Names(cols ...Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
