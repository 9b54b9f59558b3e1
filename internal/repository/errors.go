package repository

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidRef     = errors.New("referenced record does not exist")
	ErrIdemInProgress = errors.New("idempotency key in progress")
)
