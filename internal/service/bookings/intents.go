package bookings

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirinyoku/tourdesk/internal/assistant"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
)

// Assistant is the booking assistant. *assistant.Client satisfies it.
type Assistant interface {
	Send(ctx context.Context, message string) ([]assistant.Reply, error)
}

type Limiter interface {
	Allow(ctx context.Context, suffix string) (redisrepo.Decision, error)
}

// GigCreator is the part of the gig registry the adapter may touch.
type GigCreator interface {
	CreateGig(ctx context.Context, in NewGig) (domain.Gig, error)
}

type MessageKind string

const (
	MessageText          MessageKind = "text"
	MessageBooking       MessageKind = "booking"
	MessageBookingFailed MessageKind = "booking_failed"
)

// Message is one entry of a chat turn as shown to the user.
type Message struct {
	Kind    MessageKind `json:"kind"`
	Content string      `json:"content,omitempty"`
	Gig     *domain.Gig `json:"gig,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Adapter turns assistant replies into gig registry calls. It never
// touches quotes or documents.
type Adapter struct {
	assistant       Assistant
	gigs            GigCreator
	limiter         Limiter
	defaultCurrency string
}

// NewAdapter wires the adapter. assistant may be nil when the integration
// is not configured; limiter may be nil.
func NewAdapter(a Assistant, gigs GigCreator, limiter Limiter, defaultCurrency string) *Adapter {
	return &Adapter{assistant: a, gigs: gigs, limiter: limiter, defaultCurrency: defaultCurrency}
}

// Chat sends one user message and applies any booking intents in the reply.
// clientKey scopes the rate limit.
func (a *Adapter) Chat(ctx context.Context, clientKey, message string) ([]Message, error) {
	const op = "service.bookings.Adapter.Chat"

	if a.assistant == nil {
		return nil, fmt.Errorf("%s:%w", op, assistant.ErrNotConfigured)
	}

	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrEmptyMessage)
	}

	if a.limiter != nil && clientKey != "" {
		d, err := a.limiter.Allow(ctx, clientKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !d.Allowed {
			return nil, fmt.Errorf("%s:%w", op, RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	replies, err := a.assistant.Send(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return a.Apply(ctx, replies), nil
}

// Apply handles replies in order. A failed booking is reported in place and
// does not stop the ones after it.
func (a *Adapter) Apply(ctx context.Context, replies []assistant.Reply) []Message {
	out := make([]Message, 0, len(replies))

	for _, r := range replies {
		switch r.Kind {
		case assistant.KindText:
			out = append(out, Message{Kind: MessageText, Content: r.Content})
		case assistant.KindBooking:
			if r.Err != nil {
				out = append(out, Message{Kind: MessageBookingFailed, Error: r.Err.Error()})
				continue
			}
			if r.Booking == nil {
				continue
			}
			g, err := a.book(ctx, *r.Booking)
			if err != nil {
				out = append(out, Message{Kind: MessageBookingFailed, Error: err.Error()})
				continue
			}
			out = append(out, Message{
				Kind:    MessageBooking,
				Content: fmt.Sprintf("Booked %s, %s on %s.", g.Venue, g.City, g.Date.Format(domain.DateLayout)),
				Gig:     &g,
			})
		}
	}

	return out
}

func (a *Adapter) book(ctx context.Context, b assistant.BookingIntent) (domain.Gig, error) {
	currency := strings.ToUpper(strings.TrimSpace(b.Currency))
	if currency == "" {
		currency = a.defaultCurrency
	}

	status := b.Status
	if status == "" {
		status = string(domain.GigPending)
	}

	// model output may carry float noise; round it to the currency's minor unit
	fee, err := money.Round(b.Fee, currency)
	if err != nil {
		return domain.Gig{}, fmt.Errorf("invalid fee: %w", err)
	}

	return a.gigs.CreateGig(ctx, NewGig{
		Venue:     b.Venue,
		City:      b.City,
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    status,
		Fee:       fee.Decimal(currency),
		Currency:  currency,
		Notes:     b.Notes,
	})
}
