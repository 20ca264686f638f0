package shared

import (
	"errors"
)

// ErrorCategory groups errors by how callers are expected to react to them.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "VALIDATION"
	CategoryCredential    ErrorCategory = "CREDENTIAL"
	CategoryAuthorization ErrorCategory = "AUTHORIZATION"
	CategoryBusinessRule  ErrorCategory = "BUSINESS_RULE"
	CategoryConcurrency   ErrorCategory = "CONCURRENCY"
	CategoryPersistence   ErrorCategory = "PERSISTENCE"
)

// Categorized is implemented by every domain error that belongs to a known category.
type Categorized interface {
	error
	Category() ErrorCategory
}

// DomainError is a sentinel error carrying its category.
type DomainError struct {
	category ErrorCategory
	msg      string
}

// NewError creates a categorized sentinel error.
func NewError(category ErrorCategory, msg string) *DomainError {
	return &DomainError{category: category, msg: msg}
}

func (e *DomainError) Error() string {
	return e.msg
}

func (e *DomainError) Category() ErrorCategory {
	return e.category
}

var (
	ErrBusy                = NewError(CategoryConcurrency, "account is busy, try again later")
	ErrForbidden           = NewError(CategoryAuthorization, "actor is not allowed to perform this operation")
	ErrLedgerInconsistency = NewError(CategoryPersistence, "ledger write could not be confirmed")
)

// Classify returns the category of err. Unknown errors are treated as persistence failures.
func Classify(err error) ErrorCategory {
	var c Categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	return CategoryPersistence
}

// IsRetryable reports whether err is a transient concurrency failure.
func IsRetryable(err error) bool {
	return err != nil && Classify(err) == CategoryConcurrency
}
