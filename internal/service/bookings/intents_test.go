package bookings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kirinyoku/tourdesk/internal/assistant"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	replies []assistant.Reply
	err     error
	sent    []string
}

func (f *fakeAssistant) Send(_ context.Context, message string) ([]assistant.Reply, error) {
	f.sent = append(f.sent, message)
	return f.replies, f.err
}

type fakeLimiter struct {
	decision redisrepo.Decision
}

func (f fakeLimiter) Allow(context.Context, string) (redisrepo.Decision, error) {
	return f.decision, nil
}

func newTestAdapter(a Assistant, store *fakeGigStore, l Limiter) *Adapter {
	return NewAdapter(a, New(store, nil, nil, Config{DefaultCurrency: "LKR"}), l, "LKR")
}

func TestChatTextAndBookingCreatesOneGig(t *testing.T) {
	store := newFakeGigStore()
	a := &fakeAssistant{replies: []assistant.Reply{
		{Kind: assistant.KindText, Content: "Sure, creating the booking."},
		{Kind: assistant.KindBooking, Booking: &assistant.BookingIntent{
			Venue: "Kama Colombo", City: "Colombo", Date: "2026-04-10", Fee: decimal.NewFromInt(85000), Currency: "LKR",
		}},
	}}

	msgs, err := newTestAdapter(a, store, nil).Chat(context.Background(), "ip:1", "book kama")
	require.NoError(t, err)

	assert.Equal(t, 1, store.creates)
	require.Len(t, msgs, 2)
	assert.Equal(t, MessageText, msgs[0].Kind)
	assert.Nil(t, msgs[0].Gig)

	assert.Equal(t, MessageBooking, msgs[1].Kind)
	require.NotNil(t, msgs[1].Gig)
	assert.Equal(t, domain.GigPending, msgs[1].Gig.Status)
	assert.Equal(t, money.Amount(8500000), msgs[1].Gig.Fee)
}

func TestApplyCollectsFailuresAndContinues(t *testing.T) {
	store := newFakeGigStore()
	adapter := newTestAdapter(nil, store, nil)

	msgs := adapter.Apply(context.Background(), []assistant.Reply{
		{Kind: assistant.KindBooking, Booking: &assistant.BookingIntent{Venue: "No Date", City: "Colombo", Currency: "LKR"}},
		{Kind: assistant.KindBooking, Booking: &assistant.BookingIntent{
			Venue: "ZOUK", City: "Singapore", Date: "2026-07-20", Fee: decimal.RequireFromString("8000.004"), Currency: "usd", Status: "Confirmed",
		}},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, MessageBookingFailed, msgs[0].Kind)
	assert.NotEmpty(t, msgs[0].Error)

	assert.Equal(t, MessageBooking, msgs[1].Kind)
	assert.Equal(t, domain.GigConfirmed, msgs[1].Gig.Status)
	assert.Equal(t, "USD", msgs[1].Gig.Currency)
	assert.Equal(t, money.Amount(800000), msgs[1].Gig.Fee)
	assert.Equal(t, 1, len(store.gigs))
}

func TestChatUnreadableIntentDoesNotDropTheTurn(t *testing.T) {
	store := newFakeGigStore()
	a := &fakeAssistant{replies: []assistant.Reply{
		{Kind: assistant.KindText, Content: "Booking both."},
		{Kind: assistant.KindBooking, Err: fmt.Errorf("%w: decode create_booking args", assistant.ErrInvalidIntent)},
		{Kind: assistant.KindBooking, Booking: &assistant.BookingIntent{
			Venue: "Vibe Club", City: "Colombo", Date: "2026-11-20", Fee: decimal.NewFromInt(150000), Currency: "LKR",
		}},
	}}

	msgs, err := newTestAdapter(a, store, nil).Chat(context.Background(), "ip:1", "book two")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, MessageText, msgs[0].Kind)
	assert.Equal(t, MessageBookingFailed, msgs[1].Kind)
	assert.Contains(t, msgs[1].Error, "invalid booking intent")
	assert.Equal(t, MessageBooking, msgs[2].Kind)
	assert.Equal(t, money.Amount(15000000), msgs[2].Gig.Fee)
	assert.Equal(t, 1, store.creates)
}

func TestChatAssistantFailureMutatesNothing(t *testing.T) {
	store := newFakeGigStore()
	a := &fakeAssistant{err: assistant.ErrAssistant}

	_, err := newTestAdapter(a, store, nil).Chat(context.Background(), "", "hello")
	assert.ErrorIs(t, err, assistant.ErrAssistant)
	assert.Zero(t, store.creates)
}

func TestChatRateLimited(t *testing.T) {
	a := &fakeAssistant{}
	l := fakeLimiter{decision: redisrepo.Decision{Allowed: false, RetryAfter: 30 * time.Second}}

	_, err := newTestAdapter(a, newFakeGigStore(), l).Chat(context.Background(), "ip:1", "hello")
	var rl RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 30*time.Second, rl.RetryAfter)
	assert.Empty(t, a.sent)
}

func TestChatNotConfigured(t *testing.T) {
	_, err := newTestAdapter(nil, newFakeGigStore(), nil).Chat(context.Background(), "", "hello")
	assert.ErrorIs(t, err, assistant.ErrNotConfigured)
}

func TestChatEmptyMessage(t *testing.T) {
	_, err := newTestAdapter(&fakeAssistant{}, newFakeGigStore(), nil).Chat(context.Background(), "", "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
