package servicetest

import (
	"context"
	"sync"
	"time"

	"github.com/go-extras/go-kit/must"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/service"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// Fixture ids and credentials loaded by NewStore.
const (
	UserEmail    = "user@nextmail.com"
	UserPassword = "123456"

	CustomerDelba = "3958dc9e-712f-4377-85e9-fec4b6a6442a"
	CustomerLee   = "3958dc9e-742f-4377-85e9-fec4b6a6442a"
	CustomerSteph = "3958dc9e-787f-4377-85e9-fec4b6a6442a"
)

// NewStore returns a store with one user and three customers, without invoices.
func NewStore() *Store {
	return &Store{
		Users: []model.User{{
			ID:       "410544b2-4001-4271-9855-fec4b6a6442a",
			Name:     "User",
			Email:    UserEmail,
			Password: must.Must(utils.HashPassword(UserPassword, 4)),
		}},
		Customers: []model.Customer{
			{ID: CustomerDelba, Name: "Delba de Oliveira", Email: "delba@oliveira.com", ImageURL: "/customers/delba-de-oliveira.png"},
			{ID: CustomerLee, Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee-robinson.png"},
			{ID: CustomerSteph, Name: "Steph Dietz", Email: "steph@dietz.com", ImageURL: "/customers/steph-dietz.png"},
		},
	}
}

// AddInvoice appends an invoice dated date (YYYY-MM-DD) and returns its id.
func (s *Store) AddInvoice(id, customerID string, cents int64, status model.InvoiceStatus, date string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Invoices = append(s.Invoices, model.Invoice{
		ID:          id,
		CustomerID:  customerID,
		AmountCents: cents,
		Status:      status,
		Date:        must.Must(time.Parse(model.DateLayout, date)),
	})
	return id
}

// Recorder is a ViewInvalidator that remembers every event. Err, when set,
// is returned after recording.
type Recorder struct {
	mu     sync.Mutex
	events []service.ViewEvent
	Err    error
}

func (r *Recorder) Invalidate(_ context.Context, ev service.ViewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []service.ViewEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]service.ViewEvent(nil), r.events...)
}
