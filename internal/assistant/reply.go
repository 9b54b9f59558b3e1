package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

type Kind string

const (
	KindText    Kind = "text"
	KindBooking Kind = "booking"
)

// Reply is one part of a model turn. Text replies carry Content; booking
// replies carry either Booking or, when the call arguments were unusable, Err.
type Reply struct {
	Kind    Kind
	Content string
	Booking *BookingIntent
	Err     error
}

// BookingIntent carries the arguments of a create_booking call as the
// model produced them.
type BookingIntent struct {
	Venue     string  `json:"venue"`
	City      string  `json:"city"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Fee       decimal.Decimal `json:"fee"`
	Currency  string  `json:"currency"`
	Notes     string  `json:"notes"`
	Status    string  `json:"status"`
}

const createBookingFn = "create_booking"

// repliesFromParts keeps the order of the model's parts. Unknown function
// calls and empty text parts are dropped. A create_booking call that cannot
// be decoded stays in place as a booking reply with Err set.
func repliesFromParts(parts []*genai.Part) []Reply {
	out := make([]Reply, 0, len(parts))

	for _, p := range parts {
		if p == nil {
			continue
		}

		switch {
		case p.FunctionCall != nil && p.FunctionCall.Name == createBookingFn:
			intent, err := decodeBooking(p.FunctionCall.Args)
			if err != nil {
				out = append(out, Reply{Kind: KindBooking, Err: err})
				continue
			}
			out = append(out, Reply{Kind: KindBooking, Booking: &intent})
		case p.FunctionCall != nil:
			continue
		case strings.TrimSpace(p.Text) != "" && !p.Thought:
			out = append(out, Reply{Kind: KindText, Content: p.Text})
		}
	}

	return out
}

func decodeBooking(args map[string]any) (BookingIntent, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return BookingIntent{}, fmt.Errorf("%w: encode %s args: %w", ErrInvalidIntent, createBookingFn, err)
	}

	var intent BookingIntent
	if err := json.Unmarshal(b, &intent); err != nil {
		return BookingIntent{}, fmt.Errorf("%w: decode %s args: %w", ErrInvalidIntent, createBookingFn, err)
	}

	return intent, nil
}
