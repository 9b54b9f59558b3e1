package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/tourdesk/internal/domain"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGigs struct {
	gigs  []domain.Gig
	calls int
}

func (f *fakeGigs) List(context.Context) ([]domain.Gig, error) {
	f.calls++
	return f.gigs, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowDefaultsAndRollover(t *testing.T) {
	s := New(nil, nil, Config{})

	start, end, err := s.window(domain.Gig{Date: day(2026, 11, 20)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 20, 21, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 11, 21, 0, 0, 0, 0, time.UTC), end)

	start, end, err = s.window(domain.Gig{Date: day(2026, 11, 20), StartTime: "18:30", EndTime: "20:00"})
	require.NoError(t, err)
	assert.Equal(t, 18, start.Hour())
	assert.Equal(t, time.Date(2026, 11, 20, 20, 0, 0, 0, time.UTC), end)

	_, _, err = s.window(domain.Gig{Date: day(2026, 11, 20), StartTime: "late"})
	assert.Error(t, err)
}

func TestDescription(t *testing.T) {
	g := domain.Gig{Fee: 15000000, Currency: "LKR", Status: domain.GigConfirmed}
	assert.Equal(t, "Fee: LKR 150000\nNotes: N/A\nStatus: Confirmed", Description(g))
}

func TestFeedOnlyConfirmedAndCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	gigs := &fakeGigs{gigs: []domain.Gig{
		{ID: "1", Venue: "Vibe Club", City: "Colombo", Date: day(2026, 11, 20), Status: domain.GigConfirmed, Fee: 100, Currency: "LKR"},
		{ID: "2", Venue: "Sky Bar", City: "Kandy", Date: day(2026, 11, 21), Status: domain.GigPending, Fee: 100, Currency: "LKR"},
	}}
	s := New(gigs, redisrepo.New(rdb), Config{})
	s.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }

	feed, err := s.Feed(context.Background())
	require.NoError(t, err)
	assert.Contains(t, feed, "SUMMARY:Performance: Vibe Club")
	assert.NotContains(t, feed, "Sky Bar")
	assert.Equal(t, 1, strings.Count(feed, "BEGIN:VEVENT"))

	again, err := s.Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, feed, again)
	assert.Equal(t, 1, gigs.calls)
}
