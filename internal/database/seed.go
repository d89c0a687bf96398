package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-extras/go-kit/must"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/schema"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

type seedUser struct {
	id, name, email, password string
}

type seedCustomer struct {
	id, name, email, imageURL string
}

type seedInvoice struct {
	customerID string
	amount     int64
	status     string
	date       string
}

var seedUsers = []seedUser{
	{id: "410544b2-4001-4271-9855-fec4b6a6442a", name: "User", email: "user@nextmail.com", password: "123456"},
}

var seedCustomers = []seedCustomer{
	{id: "3958dc9e-712f-4377-85e9-fec4b6a6442a", name: "Delba de Oliveira", email: "delba@oliveira.com", imageURL: "/customers/delba-de-oliveira.png"},
	{id: "3958dc9e-742f-4377-85e9-fec4b6a6442a", name: "Lee Robinson", email: "lee@robinson.com", imageURL: "/customers/lee-robinson.png"},
	{id: "3958dc9e-737f-4377-85e9-fec4b6a6442a", name: "Hector Simpson", email: "hector@simpson.com", imageURL: "/customers/hector-simpson.png"},
	{id: "50ca3e18-62cd-11ee-8c99-0242ac120002", name: "Steven Tey", email: "steven@tey.com", imageURL: "/customers/steven-tey.png"},
	{id: "3958dc9e-787f-4377-85e9-fec4b6a6442a", name: "Steph Dietz", email: "steph@dietz.com", imageURL: "/customers/steph-dietz.png"},
	{id: "76d65c26-f784-44a2-ac19-586678f7c2f2", name: "Michael Novotny", email: "michael@novotny.com", imageURL: "/customers/michael-novotny.png"},
}

var seedInvoices = []seedInvoice{
	{customerID: "3958dc9e-712f-4377-85e9-fec4b6a6442a", amount: 15795, status: "pending", date: "2022-12-06"},
	{customerID: "3958dc9e-742f-4377-85e9-fec4b6a6442a", amount: 20348, status: "pending", date: "2022-11-14"},
	{customerID: "3958dc9e-787f-4377-85e9-fec4b6a6442a", amount: 3040, status: "paid", date: "2022-10-29"},
	{customerID: "50ca3e18-62cd-11ee-8c99-0242ac120002", amount: 44800, status: "paid", date: "2023-09-10"},
	{customerID: "76d65c26-f784-44a2-ac19-586678f7c2f2", amount: 34577, status: "pending", date: "2023-08-05"},
	{customerID: "3958dc9e-737f-4377-85e9-fec4b6a6442a", amount: 54246, status: "pending", date: "2023-07-16"},
	{customerID: "3958dc9e-712f-4377-85e9-fec4b6a6442a", amount: 666, status: "pending", date: "2023-06-27"},
	{customerID: "50ca3e18-62cd-11ee-8c99-0242ac120002", amount: 32545, status: "paid", date: "2023-06-09"},
	{customerID: "3958dc9e-787f-4377-85e9-fec4b6a6442a", amount: 1250, status: "paid", date: "2023-06-17"},
	{customerID: "76d65c26-f784-44a2-ac19-586678f7c2f2", amount: 8546, status: "paid", date: "2023-06-07"},
	{customerID: "3958dc9e-742f-4377-85e9-fec4b6a6442a", amount: 500, status: "paid", date: "2023-08-19"},
	{customerID: "3958dc9e-737f-4377-85e9-fec4b6a6442a", amount: 8945, status: "paid", date: "2023-06-03"},
	{customerID: "3958dc9e-742f-4377-85e9-fec4b6a6442a", amount: 1000, status: "paid", date: "2022-06-05"},
}

var seedRevenue = []struct {
	month   string
	revenue float64
}{
	{"Jan", 2000}, {"Feb", 1800}, {"Mar", 2200}, {"Apr", 2500},
	{"May", 2300}, {"Jun", 3200}, {"Jul", 3500}, {"Aug", 3700},
	{"Sep", 2500}, {"Oct", 2800}, {"Nov", 3000}, {"Dec", 4800},
}

// Seed inserts placeholder users, customers, invoices and revenue rows so a
// fresh database has something to show. Users and customers are keyed by
// fixed ids and skipped when present; invoices and revenue are only loaded
// into empty tables. Passwords are hashed with the given bcrypt cost.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	insertUser := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
		schema.Users.TableName(), schema.Users.ID.Name, schema.Users.Name.Name, schema.Users.Email.Name, schema.Users.Password.Name)
	for _, u := range seedUsers {
		hash := must.Must(utils.HashPassword(u.password, bcryptCost))
		if _, err = tx.ExecContext(ctx, insertUser, u.id, u.name, u.email, hash); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	insertCustomer := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) ON CONFLICT (%s) DO NOTHING`,
		schema.Customers.TableName(), schema.Customers.ID.Name, schema.Customers.Name.Name, schema.Customers.Email.Name,
		schema.Customers.ImageURL.Name, schema.Customers.ID.Name)
	for _, cu := range seedCustomers {
		if _, err = tx.ExecContext(ctx, insertCustomer, cu.id, cu.name, cu.email, cu.imageURL); err != nil {
			return fmt.Errorf("seed customers: %w", err)
		}
	}

	empty, err := isEmpty(ctx, tx, schema.Invoices.TableName())
	if err != nil {
		return err
	}
	if empty {
		insertInvoice := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
			schema.Invoices.TableName(), schema.Invoices.CustomerID.Name, schema.Invoices.Amount.Name,
			schema.Invoices.Status.Name, schema.Invoices.Date.Name)
		for _, inv := range seedInvoices {
			date := must.Must(time.Parse(model.DateLayout, inv.date))
			if _, err = tx.ExecContext(ctx, insertInvoice, inv.customerID, inv.amount, inv.status, date); err != nil {
				return fmt.Errorf("seed invoices: %w", err)
			}
		}
	}

	empty, err = isEmpty(ctx, tx, schema.Revenue.TableName())
	if err != nil {
		return err
	}
	if empty {
		insertRevenue := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
			schema.Revenue.TableName(), schema.Revenue.Month.Name, schema.Revenue.Revenue.Name)
		for _, r := range seedRevenue {
			if _, err = tx.ExecContext(ctx, insertRevenue, r.month, r.revenue); err != nil {
				return fmt.Errorf("seed revenue: %w", err)
			}
		}
	}
	return nil
}

func isEmpty(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", table)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return !exists, nil
}
