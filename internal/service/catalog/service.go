package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	"github.com/kirinyoku/tourdesk/internal/repository"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("catalog item not found")

type Store interface {
	Create(ctx context.Context, it domain.CatalogItem) (domain.CatalogItem, error)
	Get(ctx context.Context, id string) (domain.CatalogItem, error)
	List(ctx context.Context) ([]domain.CatalogItem, error)
}

type Config struct {
	DefaultCurrency string
	CacheTTL        time.Duration
}

type Service struct {
	store Store
	cache *redisrepo.Cache
	cfg   Config
}

// New wires the inventory catalog. cache may be nil.
func New(store Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "LKR"
	}

	return &Service{store: store, cache: cache, cfg: cfg}
}

// List returns the whole inventory in insertion order.
func (s *Service) List(ctx context.Context) ([]domain.CatalogItem, error) {
	const op = "service.catalog.List"

	if s.cache == nil {
		items, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return items, nil
	}

	items, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyCatalog(), s.cfg.CacheTTL, s.store.List)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.CatalogItem, error) {
	const op = "service.catalog.Get"

	it, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.CatalogItem{}, fmt.Errorf("%s:%w", op, ErrItemNotFound)
		}
		return domain.CatalogItem{}, fmt.Errorf("%s:%w", op, err)
	}

	return it, nil
}

type NewItem struct {
	Name      string          `validate:"required,max=200"`
	Category  string          `validate:"required,oneof=Audio Lighting DJ Backline Stage"`
	DailyRate decimal.Decimal `validate:"-"`
	Currency  string          `validate:"omitempty,iso4217"`
}

// Add appends an item. Existing items are never modified, so drafts that
// copied a rate keep it.
func (s *Service) Add(ctx context.Context, in NewItem) (domain.CatalogItem, error) {
	const op = "service.catalog.Add"

	in.Name = strings.TrimSpace(in.Name)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = s.cfg.DefaultCurrency
	}

	if err := validation.Struct(in); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s:%w", op, err)
	}

	if !in.DailyRate.IsPositive() {
		return domain.CatalogItem{}, fmt.Errorf("%s:%w", op, validation.Field("daily_rate", "must be a positive amount"))
	}

	rate, err := money.FromDecimal(in.DailyRate, in.Currency)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s:%w", op, validation.Field("daily_rate", err.Error()))
	}

	it, err := s.store.Create(ctx, domain.CatalogItem{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Category:  domain.EquipmentCategory(in.Category),
		DailyRate: rate,
		Currency:  in.Currency,
	})
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, redisx.KeyCatalog())
	}

	return it, nil
}
