// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell a
// missing row apart from a datastore failure.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvoiceNotFound is returned when no invoice matches the given id.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrUserNotFound is returned when no user matches the given email.
var ErrUserNotFound = errors.New("user not found")

// ErrCustomerNotFound is returned when an invoice write references a
// customer that does not exist (foreign key violation).
var ErrCustomerNotFound = errors.New("customer not found")

// foreignKeyViolation is the SQLSTATE raised for a broken REFERENCES constraint.
const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE pattern matching it as a
// literal substring.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
