package service

import (
	"log/slog"
	"time"

	"github.com/kirinyoku/tourdesk/internal/assistant"
	"github.com/kirinyoku/tourdesk/internal/docstore"
	"github.com/kirinyoku/tourdesk/internal/observability"
	"github.com/kirinyoku/tourdesk/internal/quote"
	"github.com/kirinyoku/tourdesk/internal/render"
	postgres "github.com/kirinyoku/tourdesk/internal/repository/postgres"
	redis "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/service/bookings"
	"github.com/kirinyoku/tourdesk/internal/service/calendar"
	"github.com/kirinyoku/tourdesk/internal/service/catalog"
	"github.com/kirinyoku/tourdesk/internal/service/clients"
	"github.com/kirinyoku/tourdesk/internal/service/export"
	"github.com/kirinyoku/tourdesk/internal/service/ledger"
	"github.com/kirinyoku/tourdesk/internal/service/quotes"
	"github.com/kirinyoku/tourdesk/internal/sheets"
)

type Services struct {
	Bookings *bookings.Service
	Intents  *bookings.Adapter
	Clients  *clients.Service
	Catalog  *catalog.Service
	Ledger   *ledger.Service
	Quotes   *quotes.Service
	Registry *quotes.Registry
	Calendar *calendar.Service
	Export   *export.Service
	Drive    *docstore.Drive
	// Assistant is nil when no API key is configured.
	Assistant *assistant.Client
	Metrics   *observability.Metrics
}

type Config struct {
	DefaultCurrency string
	CatalogCacheTTL time.Duration
	Issuer          quote.IssuerConfig
	Policy          quote.StatusPolicy
	Calendar        calendar.Config
}

// Deps are the infrastructure handles the services are built on. Queue,
// Assistant and Metrics may be nil.
type Deps struct {
	Store     *postgres.Store
	Cache     *redis.Cache
	Drafts    *redis.DraftStore
	PubSub    *redis.DocumentsPubSub
	Limiter   *redis.SlidingWindowLimiter
	Drive     *docstore.Drive
	Sheets    *sheets.Exporter
	Assistant *assistant.Client
	Queue     quote.SyncQueue
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	gigs := d.Store.Gigs()

	booking := bookings.New(gigs, d.Cache, d.Logger, bookings.Config{DefaultCurrency: cfg.DefaultCurrency})

	// a typed nil would hide the missing integration from the adapter
	var asst bookings.Assistant
	if d.Assistant != nil {
		asst = d.Assistant
	}

	var limiter bookings.Limiter
	if d.Limiter != nil {
		limiter = d.Limiter
	}

	registry := quotes.NewRegistry(d.Store, d.Cache, d.PubSub, d.Logger)

	issuer := quote.NewIssuer(d.Drive, registry, d.Queue, cfg.Policy, d.Logger, cfg.Issuer)

	return &Services{
		Bookings: booking,
		Intents:  bookings.NewAdapter(asst, booking, limiter, cfg.DefaultCurrency),
		Clients:  clients.New(d.Store.Clients()),
		Catalog: catalog.New(d.Store.Catalog(), d.Cache, catalog.Config{
			DefaultCurrency: cfg.DefaultCurrency,
			CacheTTL:        cfg.CatalogCacheTTL,
		}),
		Ledger: ledger.New(d.Store.Expenses(), gigs, d.Cache, ledger.Config{DefaultCurrency: cfg.DefaultCurrency}),
		Quotes: quotes.New(quotes.Deps{
			Gigs:     gigs,
			Clients:  d.Store.Clients(),
			Catalog:  d.Store.Catalog(),
			Drafts:   d.Drafts,
			Docs:     registry,
			Renderer: render.NewPDF(render.DefaultLetterhead()),
			Issuer:   issuer,
			Cache:    d.Cache,
			Logger:   d.Logger,
		}, quotes.Config{}),
		Registry:  registry,
		Calendar:  calendar.New(gigs, d.Cache, cfg.Calendar),
		Export:    export.New(gigs, d.Store.Expenses(), d.Sheets, 0),
		Drive:     d.Drive,
		Assistant: d.Assistant,
		Metrics:   d.Metrics,
	}
}
