package billing

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// Specific validation causes, each carried inside a ValidationError.
var (
	// ErrInvalidCustomer is returned when an invoice references a customer
	// that does not exist.
	ErrInvalidCustomer = errors.New("unknown customer")

	// ErrEmptyLineItems is returned when an invoice has no line items.
	ErrEmptyLineItems = errors.New("invoice has no line items")

	// ErrInvalidProduct is returned when a line item references a product
	// that does not exist.
	ErrInvalidProduct = errors.New("unknown product")

	// ErrInvalidQuantity is returned when a line item quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrRequiredField is returned when a mandatory catalog field is empty.
	ErrRequiredField = errors.New("required field is empty")

	// ErrNegativeValue is returned when a price, stock level or tax rate is negative.
	ErrNegativeValue = errors.New("value must not be negative")
)

// ErrInvalidStatus is returned when a stored invoice carries a status that
// cannot move to PAID.
var ErrInvalidStatus = errors.New("invalid invoice status transition")

// ValidationError describes rejected input. It matches ErrValidation and its
// specific cause under errors.Is.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the specific cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports a match for ErrValidation in addition to the wrapped cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, cause error, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     cause,
	}
}

// BillingError wraps failures of the invoice and catalog operations with the
// operation that failed.
type BillingError struct {
	// Op is the operation that failed (e.g., "CreateInvoice", "MarkPaid").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *BillingError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("billing: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("billing: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *BillingError) Unwrap() error {
	return e.Err
}

// wrapError wraps err as a BillingError unless it already is one or is a
// validation error, which callers inspect directly.
func wrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var billingErr *BillingError
	if errors.As(err, &billingErr) {
		return err
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return err
	}

	return &BillingError{Op: op, Err: err, Details: details}
}
