// Package service implements the dashboard operations on top of the
// repositories: read models for the dashboard pages, the invoice mutations
// and the credentials check. HTTP concerns stay in package handler.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
)

// InvoiceStore is the subset of repository.InvoiceRepo used by the service.
type InvoiceStore interface {
	Latest(ctx context.Context, limit int) ([]model.LatestInvoiceRaw, error)
	Search(ctx context.Context, q repository.InvoiceSearchQuery) ([]model.InvoicesTable, error)
	CountMatching(ctx context.Context, query string) (int64, error)
	GetByID(ctx context.Context, id string) (model.Invoice, error)
	Count(ctx context.Context) (int64, error)
	StatusTotals(ctx context.Context) (paid, pending int64, err error)
	Create(ctx context.Context, inv model.Invoice) (string, error)
	Update(ctx context.Context, inv model.Invoice) error
	Delete(ctx context.Context, id string) error
}

// CustomerStore is the subset of repository.CustomerRepo used by the service.
type CustomerStore interface {
	Count(ctx context.Context) (int64, error)
	ListNames(ctx context.Context) ([]model.CustomerField, error)
	SearchWithTotals(ctx context.Context, query string) ([]model.CustomerTotals, error)
}

// RevenueStore reads the monthly revenue snapshot.
type RevenueStore interface {
	List(ctx context.Context) ([]model.Revenue, error)
}

// UserStore looks users up by email.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// Deps bundles everything New needs. Invalidator and Logger are optional.
type Deps struct {
	Invoices    InvoiceStore
	Customers   CustomerStore
	Revenue     RevenueStore
	Users       UserStore
	Invalidator ViewInvalidator
	Logger      *slog.Logger

	JWTSecret      string
	AccessTokenTTL int // minutes
	// IssueToken overrides utils.NewAccessToken when set.
	IssueToken TokenIssuer

	// Now defaults to time.Now; tests pin it to get a stable invoice date.
	Now func() time.Time
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	invoices    InvoiceStore
	customers   CustomerStore
	revenue     RevenueStore
	users       UserStore
	invalidator ViewInvalidator
	log         *slog.Logger

	jwtSecret string
	tokenTTL  int
	tokens    TokenIssuer
	now       func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		invoices:    d.Invoices,
		customers:   d.Customers,
		revenue:     d.Revenue,
		users:       d.Users,
		invalidator: d.Invalidator,
		log:         d.Logger,
		jwtSecret:   d.JWTSecret,
		tokenTTL:    d.AccessTokenTTL,
		tokens:      d.IssueToken,
		now:         d.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.invalidator == nil {
		s.invalidator = NopInvalidator{}
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = 60
	}
	return s
}
