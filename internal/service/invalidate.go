package service

import (
	"context"
	"errors"
	"time"
)

// Mutation kinds carried by ViewEvent.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ViewEvent tells interested parties that the view at Path is stale because
// an invoice changed.
type ViewEvent struct {
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	InvoiceID string    `json:"invoice_id"`
	At        time.Time `json:"at"`
}

// ViewInvalidator is notified after a mutation has been committed.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, ev ViewEvent) error
}

// NopInvalidator ignores every event.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, ViewEvent) error { return nil }

// Invalidators fans an event out to each member and joins their errors.
type Invalidators []ViewInvalidator

func (m Invalidators) Invalidate(ctx context.Context, ev ViewEvent) error {
	var errs []error
	for _, inv := range m {
		if err := inv.Invalidate(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// invalidate is best effort: the mutation already happened, so a failure is
// only logged.
func (s *Service) invalidate(ctx context.Context, ev ViewEvent) {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	if err := s.invalidator.Invalidate(ctx, ev); err != nil {
		s.log.Warn("view invalidation failed", "path", ev.Path, "action", ev.Action, "invoice_id", ev.InvoiceID, "err", err)
	}
}
