package quote

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrEmptyDocument    = errors.New("document has no value to issue")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrCurrencyMismatch = errors.New("currency does not match the draft currency")
)

// ValidationError rejects a draft mutation; the draft is left unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

type LineItemNotFoundError struct {
	ID string
}

func (e LineItemNotFoundError) Error() string {
	return fmt.Sprintf("line item not found: %s", e.ID)
}

func (e LineItemNotFoundError) Unwrap() error { return ErrNotFound }

// CurrencyMismatchError is both a validation failure and a currency mismatch.
type CurrencyMismatchError struct {
	Draft string
	Got   string
}

func (e CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency %s does not match draft currency %s", e.Got, e.Draft)
}

func (e CurrencyMismatchError) Unwrap() []error {
	return []error{ErrValidation, ErrCurrencyMismatch}
}
