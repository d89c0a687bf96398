// Package servicetest provides in-memory stores for exercising package
// service and the HTTP handlers without a database.
package servicetest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// Store holds the rows of every relation. Set Err to make every call fail.
type Store struct {
	mu        sync.Mutex
	Users     []model.User
	Customers []model.Customer
	Invoices  []model.Invoice
	Revenue   []model.Revenue
	Err       error
}

// Deps returns service dependencies backed by s.
func (s *Store) Deps() service.Deps {
	return service.Deps{
		Invoices:  InvoiceRepo{s},
		Customers: CustomerRepo{s},
		Revenue:   RevenueRepo{s},
		Users:     UserRepo{s},
	}
}

// Invoice returns a copy of the invoice with the given id.
func (s *Store) Invoice(id string) (model.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.Invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return model.Invoice{}, false
}

func (s *Store) customer(id string) (model.Customer, bool) {
	for _, c := range s.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return model.Customer{}, false
}

type InvoiceRepo struct{ *Store }

func (r InvoiceRepo) Latest(_ context.Context, limit int) ([]model.LatestInvoiceRaw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []model.LatestInvoiceRaw{}
	for _, inv := range r.sortedInvoices() {
		if len(out) == limit {
			break
		}
		c, _ := r.customer(inv.CustomerID)
		out = append(out, model.LatestInvoiceRaw{
			ID: inv.ID, Name: c.Name, Email: c.Email, ImageURL: c.ImageURL, AmountCents: inv.AmountCents,
		})
	}
	return out, nil
}

func (r InvoiceRepo) Search(_ context.Context, q repository.InvoiceSearchQuery) ([]model.InvoicesTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	matched := r.matching(q.Query)
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PageSize
	if start >= len(matched) {
		return []model.InvoicesTable{}, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r InvoiceRepo) CountMatching(_ context.Context, query string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.matching(query))), nil
}

func (r InvoiceRepo) GetByID(_ context.Context, id string) (model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return model.Invoice{}, r.Err
	}
	for _, inv := range r.Invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return model.Invoice{}, repository.ErrInvoiceNotFound
}

func (r InvoiceRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.Invoices)), nil
}

func (r InvoiceRepo) StatusTotals(context.Context) (paid, pending int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, 0, r.Err
	}
	for _, inv := range r.Invoices {
		switch inv.Status {
		case model.StatusPaid:
			paid += inv.AmountCents
		case model.StatusPending:
			pending += inv.AmountCents
		}
	}
	return paid, pending, nil
}

func (r InvoiceRepo) Create(_ context.Context, inv model.Invoice) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	if _, ok := r.customer(inv.CustomerID); !ok {
		return "", repository.ErrCustomerNotFound
	}
	inv.ID = uuid.NewString()
	r.Invoices = append(r.Invoices, inv)
	return inv.ID, nil
}

func (r InvoiceRepo) Update(_ context.Context, inv model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.customer(inv.CustomerID); !ok {
		return repository.ErrCustomerNotFound
	}
	for i := range r.Invoices {
		if r.Invoices[i].ID == inv.ID {
			r.Invoices[i].CustomerID = inv.CustomerID
			r.Invoices[i].AmountCents = inv.AmountCents
			r.Invoices[i].Status = inv.Status
		}
	}
	return nil
}

func (r InvoiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	kept := r.Invoices[:0]
	for _, inv := range r.Invoices {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	r.Invoices = kept
	return nil
}

// sortedInvoices orders by date descending, then id.
func (s *Store) sortedInvoices() []model.Invoice {
	out := append([]model.Invoice(nil), s.Invoices...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) matching(query string) []model.InvoicesTable {
	q := strings.ToLower(query)
	out := []model.InvoicesTable{}
	for _, inv := range s.sortedInvoices() {
		c, _ := s.customer(inv.CustomerID)
		date := inv.Date.Format(model.DateLayout)
		fields := []string{c.Name, c.Email, string(inv.Status), strconv.FormatInt(inv.AmountCents, 10), date}
		if !containsAny(fields, q) {
			continue
		}
		out = append(out, model.InvoicesTable{
			ID:         inv.ID,
			CustomerID: inv.CustomerID,
			Name:       c.Name,
			Email:      c.Email,
			ImageURL:   c.ImageURL,
			Date:       date,
			Amount:     inv.AmountCents,
			Status:     inv.Status,
		})
	}
	return out
}

func containsAny(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

type CustomerRepo struct{ *Store }

func (r CustomerRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.Customers)), nil
}

func (r CustomerRepo) ListNames(context.Context) ([]model.CustomerField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.CustomerField, 0, len(r.Customers))
	for _, c := range r.Customers {
		out = append(out, model.CustomerField{ID: c.ID, Name: c.Name})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r CustomerRepo) SearchWithTotals(_ context.Context, query string) ([]model.CustomerTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	q := strings.ToLower(query)
	out := []model.CustomerTotals{}
	for _, c := range r.Customers {
		if !containsAny([]string{c.Name, c.Email}, q) {
			continue
		}
		ct := model.CustomerTotals{Customer: c}
		for _, inv := range r.Invoices {
			if inv.CustomerID != c.ID {
				continue
			}
			ct.TotalInvoices++
			switch inv.Status {
			case model.StatusPaid:
				ct.TotalPaid += inv.AmountCents
			case model.StatusPending:
				ct.TotalPending += inv.AmountCents
			}
		}
		out = append(out, ct)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type RevenueRepo struct{ *Store }

func (r RevenueRepo) List(context.Context) ([]model.Revenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]model.Revenue{}, r.Revenue...), nil
}

type UserRepo struct{ *Store }

func (r UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return model.User{}, r.Err
	}
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}
