// Package queue defines message payloads exchanged over the message broker,
// the publisher used by the API and the consumer run by the worker.
package queue

import (
	"time"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// Routing keys on the invoices topic exchange.
const (
	RKInvoiceCreated = "invoice.created"
	RKInvoiceUpdated = "invoice.updated"
	RKInvoiceDeleted = "invoice.deleted"

	// RKInvoiceAny binds a queue to every invoice event.
	RKInvoiceAny = "invoice.*"
)

// InvoiceChangedEvent is published after an invoice mutation has been
// committed. It carries enough for downstream consumers to audit the change
// and refresh the named view without querying the primary database.
type InvoiceChangedEvent struct {
	InvoiceID  string `json:"invoice_id"`
	Action     string `json:"action"`
	Path       string `json:"path"`
	OccurredAt string `json:"occurred_at"`
}

// EventFromView converts a view invalidation into its broker message.
func EventFromView(ev service.ViewEvent) InvoiceChangedEvent {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return InvoiceChangedEvent{
		InvoiceID:  ev.InvoiceID,
		Action:     ev.Action,
		Path:       ev.Path,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}

// RoutingKey maps a mutation kind to its routing key.
func RoutingKey(action string) string {
	switch action {
	case service.ActionCreated:
		return RKInvoiceCreated
	case service.ActionUpdated:
		return RKInvoiceUpdated
	case service.ActionDeleted:
		return RKInvoiceDeleted
	default:
		return "invoice." + action
	}
}
