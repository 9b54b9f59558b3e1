package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/repository"
	"github.com/kirinyoku/tourdesk/internal/validation"
)

var ErrClientNotFound = errors.New("client not found")

type Store interface {
	Create(ctx context.Context, c domain.Client) (domain.Client, error)
	Get(ctx context.Context, id string) (domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

type NewClient struct {
	Name     string `validate:"required,max=200"`
	Company  string `validate:"max=200"`
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"omitempty,e164"`
	Category string `validate:"required,oneof=Promoter Venue Corporate Agency"`
}

func (s *Service) Create(ctx context.Context, in NewClient) (domain.Client, error) {
	const op = "service.clients.Create"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.ReplaceAll(strings.TrimSpace(in.Phone), " ", "")

	if err := validation.Struct(in); err != nil {
		return domain.Client{}, fmt.Errorf("%s:%w", op, err)
	}

	c, err := s.store.Create(ctx, domain.Client{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Company:  strings.TrimSpace(in.Company),
		Email:    in.Email,
		Phone:    in.Phone,
		Category: domain.ClientCategory(in.Category),
	})
	if err != nil {
		return domain.Client{}, fmt.Errorf("%s:%w", op, err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Client, error) {
	const op = "service.clients.Get"

	c, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Client{}, fmt.Errorf("%s:%w", op, ErrClientNotFound)
		}
		return domain.Client{}, fmt.Errorf("%s:%w", op, err)
	}

	return c, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	const op = "service.clients.List"

	cs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return cs, nil
}
