// Package apperrors defines the error taxonomy shared across the service.
// Checkout failures are structured values so handlers can present them
// without string matching; nothing in this package is fatal.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a missing record (shop, item, order).
var ErrNotFound = errors.New("not found")

// ErrStockConflict signals that a conditional commit found a stock counter
// that no longer matches the snapshot it was validated against. The caller
// retries against a fresh read.
var ErrStockConflict = errors.New("stock changed since snapshot read")

// ValidationError reports a malformed or inconsistent request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ItemVanishedError means a cart entry references an item that no longer
// exists in the ledger. The whole order fails; nothing is written.
type ItemVanishedError struct {
	ItemName string
}

func (e *ItemVanishedError) Error() string {
	return fmt.Sprintf("item %s no longer exists", e.ItemName)
}

// InsufficientStockError means the requested quantity exceeds the stock seen
// at snapshot time. Available carries the quantity the UI can offer instead.
type InsufficientStockError struct {
	ItemName  string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s, available: %d", e.ItemName, e.Available)
}

// CommitError wraps a transport or store failure during the atomic write
// itself, distinct from validation failures. It is surfaced verbatim and
// never retried automatically.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return "ledger commit failed: " + e.Err.Error()
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
