package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

const (
	// ItemsPerPage is the fixed page size of the invoices table.
	ItemsPerPage = 6
	// LatestInvoicesLimit is how many invoices the dashboard lists.
	LatestInvoicesLimit = 5
)

// FetchError is returned by every read operation when the datastore fails.
// Error() is the generic message meant for the caller; the cause is only
// logged and kept for errors.Unwrap.
type FetchError struct {
	Op      string
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

func (s *Service) fetchFailed(op, msg string, err error) error {
	s.log.Error("database error", "op", op, "err", err)
	return &FetchError{Op: op, Message: msg, Err: err}
}

// FetchRevenue returns every revenue row unmodified.
func (s *Service) FetchRevenue(ctx context.Context) ([]model.Revenue, error) {
	rows, err := s.revenue.List(ctx)
	if err != nil {
		return nil, s.fetchFailed("FetchRevenue", "Failed to fetch revenue data.", err)
	}
	return rows, nil
}

// FetchLatestInvoices returns the five newest invoices with their customer
// and the amount formatted as currency.
func (s *Service) FetchLatestInvoices(ctx context.Context) ([]model.LatestInvoice, error) {
	rows, err := s.invoices.Latest(ctx, LatestInvoicesLimit)
	if err != nil {
		return nil, s.fetchFailed("FetchLatestInvoices", "Failed to fetch the latest invoices.", err)
	}
	out := make([]model.LatestInvoice, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.LatestInvoice{
			ID:       r.ID,
			Name:     r.Name,
			Email:    r.Email,
			ImageURL: r.ImageURL,
			Amount:   utils.FormatCurrency(r.AmountCents),
		})
	}
	return out, nil
}

// FetchCardData runs the three aggregate queries concurrently. Any failure
// fails the whole call.
func (s *Service) FetchCardData(ctx context.Context) (model.CardData, error) {
	var (
		invoiceCount, customerCount int64
		paid, pending               int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		invoiceCount, err = s.invoices.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		customerCount, err = s.customers.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		paid, pending, err = s.invoices.StatusTotals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.CardData{}, s.fetchFailed("FetchCardData", "Failed to fetch card data.", err)
	}
	return model.CardData{
		NumberOfCustomers:    customerCount,
		NumberOfInvoices:     invoiceCount,
		TotalPaidInvoices:    utils.FormatCurrency(paid),
		TotalPendingInvoices: utils.FormatCurrency(pending),
	}, nil
}

// FetchFilteredInvoices returns page currentPage (1-based) of the invoices
// whose customer name, customer email, status, amount or date contains query.
// An empty query matches everything.
func (s *Service) FetchFilteredInvoices(ctx context.Context, query string, currentPage int) ([]model.InvoicesTable, error) {
	rows, err := s.invoices.Search(ctx, repository.InvoiceSearchQuery{
		Query:    query,
		Page:     currentPage,
		PageSize: ItemsPerPage,
	})
	if err != nil {
		return nil, s.fetchFailed("FetchFilteredInvoices", "Failed to fetch invoices.", err)
	}
	return rows, nil
}

// FetchInvoicesPages returns how many pages FetchFilteredInvoices has for query.
func (s *Service) FetchInvoicesPages(ctx context.Context, query string) (int64, error) {
	n, err := s.invoices.CountMatching(ctx, query)
	if err != nil {
		return 0, s.fetchFailed("FetchInvoicesPages", "Failed to fetch total number of invoices.", err)
	}
	return TotalPages(n), nil
}

// TotalPages is ceil(n / ItemsPerPage).
func TotalPages(n int64) int64 {
	return (n + ItemsPerPage - 1) / ItemsPerPage
}

// FetchInvoiceByID returns the edit-form view of one invoice, or nil when no
// invoice has that id.
func (s *Service) FetchInvoiceByID(ctx context.Context, id string) (*model.InvoiceForm, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fetchFailed("FetchInvoiceByID", "Failed to fetch invoice.", err)
	}
	return &model.InvoiceForm{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     utils.CentsToUnits(inv.AmountCents),
		Status:     inv.Status,
	}, nil
}

// FetchCustomers returns id and name of all customers, ordered by name.
func (s *Service) FetchCustomers(ctx context.Context) ([]model.CustomerField, error) {
	rows, err := s.customers.ListNames(ctx)
	if err != nil {
		return nil, s.fetchFailed("FetchCustomers", "Failed to fetch all customers.", err)
	}
	if rows == nil {
		rows = []model.CustomerField{}
	}
	return rows, nil
}

// FetchFilteredCustomers returns the customers table for query with
// formatted pending and paid totals.
func (s *Service) FetchFilteredCustomers(ctx context.Context, query string) ([]model.FormattedCustomersTable, error) {
	rows, err := s.customers.SearchWithTotals(ctx, query)
	if err != nil {
		return nil, s.fetchFailed("FetchFilteredCustomers", "Failed to fetch customer table.", err)
	}
	out := make([]model.FormattedCustomersTable, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.FormattedCustomersTable{
			ID:            r.ID,
			Name:          r.Name,
			Email:         r.Email,
			ImageURL:      r.ImageURL,
			TotalInvoices: r.TotalInvoices,
			TotalPending:  utils.FormatCurrency(r.TotalPending),
			TotalPaid:     utils.FormatCurrency(r.TotalPaid),
		})
	}
	return out, nil
}

// GetUser returns the user with exactly this email, or nil when none exists.
func (s *Service) GetUser(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fetchFailed("GetUser", "Failed to fetch user.", err)
	}
	return &u, nil
}
