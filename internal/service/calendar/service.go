package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/kirinyoku/tourdesk/internal/domain"
	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
)

const (
	defaultStart = "21:00"
	defaultEnd   = "00:00"
)

type GigLister interface {
	List(ctx context.Context) ([]domain.Gig, error)
}

type Config struct {
	Name     string
	URL      string
	Location *time.Location
	CacheTTL time.Duration
}

type Service struct {
	gigs  GigLister
	cache *redisrepo.Cache
	cfg   Config
	now   func() time.Time
}

// New wires the iCal feed. cache may be nil.
func New(gigs GigLister, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.Name == "" {
		cfg.Name = "Black Beauty Touring Calendar"
	}
	if cfg.URL == "" {
		cfg.URL = "https://black-beauty.management"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Service{gigs: gigs, cache: cache, cfg: cfg, now: time.Now}
}

// Feed renders confirmed gigs as an iCalendar document.
func (s *Service) Feed(ctx context.Context) (string, error) {
	const op = "service.calendar.Feed"

	if s.cache != nil {
		if v, ok, err := s.cache.GetString(ctx, redisx.KeyCalendar()); err == nil && ok {
			return v, nil
		}
	}

	gigs, err := s.gigs.List(ctx)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	feed, err := s.Build(gigs)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.SetString(ctx, redisx.KeyCalendar(), feed, s.cfg.CacheTTL)
	}

	return feed, nil
}

func (s *Service) Build(gigs []domain.Gig) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tourdesk//calendar//EN")
	cal.SetXWRCalName(s.cfg.Name)

	stamp := s.now().UTC()

	for _, g := range gigs {
		if g.Status != domain.GigConfirmed {
			continue
		}

		start, end, err := s.window(g)
		if err != nil {
			return "", fmt.Errorf("gig %s: %w", g.ID, err)
		}

		ev := cal.AddEvent("gig-" + g.ID + "@tourdesk")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary("Performance: " + g.Venue)
		ev.SetDescription(Description(g))
		ev.SetLocation(g.Venue + ", " + g.City)
		ev.SetURL(s.cfg.URL)
	}

	return cal.Serialize(), nil
}

// window places the set on the gig date. A set ending at or before its
// start runs past midnight.
func (s *Service) window(g domain.Gig) (time.Time, time.Time, error) {
	start, err := at(g.Date, orDefault(g.StartTime, defaultStart), s.cfg.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := at(g.Date, orDefault(g.EndTime, defaultEnd), s.cfg.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return start, end, nil
}

func Description(g domain.Gig) string {
	notes := strings.TrimSpace(g.Notes)
	if notes == "" {
		notes = "N/A"
	}

	return fmt.Sprintf("Fee: %s %s\nNotes: %s\nStatus: %s",
		g.Currency, g.Fee.Decimal(g.Currency).String(), notes, g.Status)
}

func at(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", hhmm)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
