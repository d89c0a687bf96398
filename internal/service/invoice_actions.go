package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// InvoicesPath is the dashboard view listing invoices. Successful mutations
// invalidate it and redirect to it.
const InvoicesPath = "/dashboard/invoices"

// Form field names as posted by the invoice form.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// ActionState is what a mutation reports back to the form: per-field
// validation errors and/or a summary message.
type ActionState struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

// ActionResult is the outcome of a mutation. Redirect is set when the caller
// should navigate to another view.
type ActionResult struct {
	OK       bool        `json:"ok"`
	State    ActionState `json:"state"`
	Redirect string      `json:"redirect,omitempty"`
}

// Invalid reports whether the mutation was refused because of form errors.
func (r ActionResult) Invalid() bool { return len(r.State.Errors) > 0 }

// invoiceInput is the validated shape of the invoice form.
type invoiceInput struct {
	CustomerID string `form:"customerId" validate:"required"`
	Amount     string `form:"amount" validate:"required,amount_positive"`
	Status     string `form:"status" validate:"required,oneof=pending paid"`
}

var fieldMessages = map[string]string{
	FieldCustomerID: "Please select a customer.",
	FieldAmount:     "Please enter an amount greater than $0.",
	FieldStatus:     "Please select an invoice status.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	// Amounts must round to at least one cent.
	if err := v.RegisterValidation("amount_positive", func(fl validator.FieldLevel) bool {
		cents, err := utils.ParseAmount(fl.Field().String())
		return err == nil && cents > 0
	}); err != nil {
		panic(err)
	}
	return v
}

// validateInvoiceForm returns the parsed invoice fields, or the field errors
// when the form is invalid. Only invalid fields appear in the map.
func validateInvoiceForm(form map[string]string) (model.Invoice, map[string][]string) {
	in := invoiceInput{
		CustomerID: form[FieldCustomerID],
		Amount:     form[FieldAmount],
		Status:     form[FieldStatus],
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.Invoice{}, map[string][]string{"form": {err.Error()}}
		}
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessages[fe.Field()])
		}
		return model.Invoice{}, fields
	}
	cents, _ := utils.ParseAmount(in.Amount)
	return model.Invoice{
		CustomerID:  in.CustomerID,
		AmountCents: cents,
		Status:      model.InvoiceStatus(in.Status),
	}, nil
}

// today is the UTC calendar date of t.
func today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func missingFields(verb string, fields map[string][]string) ActionResult {
	return ActionResult{State: ActionState{
		Errors:  fields,
		Message: "Missing Fields. Failed to " + verb + " Invoice.",
	}}
}

func (s *Service) databaseError(op, verb string, err error) ActionResult {
	s.log.Error("database error", "op", op, "err", err)
	return ActionResult{State: ActionState{Message: "Database Error: Failed to " + verb + " Invoice."}}
}

// CreateInvoice validates form, stores a new invoice dated today and
// invalidates the invoices view.
func (s *Service) CreateInvoice(ctx context.Context, form map[string]string) ActionResult {
	inv, fields := validateInvoiceForm(form)
	if fields != nil {
		return missingFields("Create", fields)
	}
	inv.Date = today(s.now())

	id, err := s.invoices.Create(ctx, inv)
	if err != nil {
		return s.databaseError("CreateInvoice", "Create", err)
	}
	s.invalidate(ctx, ViewEvent{Path: InvoicesPath, Action: ActionCreated, InvoiceID: id})
	return ActionResult{OK: true, Redirect: InvoicesPath}
}

// UpdateInvoice validates form and overwrites customer, amount and status of
// invoice id. The invoice date never changes.
func (s *Service) UpdateInvoice(ctx context.Context, id string, form map[string]string) ActionResult {
	inv, fields := validateInvoiceForm(form)
	if fields != nil {
		return missingFields("Update", fields)
	}
	inv.ID = strings.TrimSpace(id)

	if err := s.invoices.Update(ctx, inv); err != nil {
		return s.databaseError("UpdateInvoice", "Update", err)
	}
	s.invalidate(ctx, ViewEvent{Path: InvoicesPath, Action: ActionUpdated, InvoiceID: inv.ID})
	return ActionResult{OK: true, Redirect: InvoicesPath}
}

// DeleteInvoice removes invoice id. Removing an id that does not exist
// succeeds.
func (s *Service) DeleteInvoice(ctx context.Context, id string) ActionResult {
	id = strings.TrimSpace(id)
	if err := s.invoices.Delete(ctx, id); err != nil {
		return s.databaseError("DeleteInvoice", "Delete", err)
	}
	s.invalidate(ctx, ViewEvent{Path: InvoicesPath, Action: ActionDeleted, InvoiceID: id})
	return ActionResult{OK: true, State: ActionState{Message: "Deleted Successfully."}}
}
