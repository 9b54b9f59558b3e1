package bookings

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrGigNotFound  = errors.New("gig not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrEmptyMessage = errors.New("message is empty")
)

// RateLimitedError tells the caller when the next chat message will be accepted.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Unwrap() error { return ErrRateLimited }
