package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/repository"
	postgresrepo "github.com/kirinyoku/tourdesk/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/uow"
)

// Registry is the Postgres backed document registry. Every write drops the
// gig's cached document list and announces the change once committed.
type Registry struct {
	store  *postgresrepo.Store
	uow    *uow.UoW
	cache  *redisrepo.Cache
	pubsub *redisrepo.DocumentsPubSub
	logger *slog.Logger
}

// NewRegistry wires the registry. cache and pubsub may be nil.
func NewRegistry(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.DocumentsPubSub,
	logger *slog.Logger,
) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		store:  store,
		uow:    uow.NewUoW(store),
		cache:  cache,
		pubsub: pubsub,
		logger: logger,
	}
}

// Save inserts or wholesale replaces a document.
//
// Returns:
//   - quotes.ErrGigNotFound if the document points at an unknown gig.
func (r *Registry) Save(ctx context.Context, doc domain.IssuedDocument) (domain.IssuedDocument, error) {
	const op = "service.quotes.Registry.Save"

	var saved domain.IssuedDocument

	err := r.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if _, err := r.store.Gigs().With(tx).Get(ctx, doc.GigID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrGigNotFound
			}
			return err
		}

		d, err := r.store.Documents().With(tx).Save(ctx, doc)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidRef) {
				return ErrGigNotFound
			}
			return err
		}

		saved = d

		after(func(ctx context.Context) {
			r.changed(ctx, d.GigID, d.ID)
		})

		return nil
	})
	if err != nil {
		return domain.IssuedDocument{}, fmt.Errorf("%s:%w", op, err)
	}

	return saved, nil
}

func (r *Registry) ListByGig(ctx context.Context, gigID string) ([]domain.IssuedDocument, error) {
	const op = "service.quotes.Registry.ListByGig"

	docs, err := r.store.Documents().ListByGig(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return docs, nil
}

func (r *Registry) Get(ctx context.Context, id string) (domain.IssuedDocument, error) {
	const op = "service.quotes.Registry.Get"

	d, err := r.store.Documents().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.IssuedDocument{}, fmt.Errorf("%s:%w", op, ErrDocumentNotFound)
		}
		return domain.IssuedDocument{}, fmt.Errorf("%s:%w", op, err)
	}

	return d, nil
}

// AttachStoreRef completes a document that was saved while the store was down.
func (r *Registry) AttachStoreRef(ctx context.Context, id, ref string) error {
	const op = "service.quotes.Registry.AttachStoreRef"

	err := r.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		docs := r.store.Documents().With(tx)

		d, err := docs.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}

		if err := docs.SetStoreRef(ctx, id, ref); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			r.changed(ctx, d.GigID, d.ID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *Registry) changed(ctx context.Context, gigID, docID string) {
	if r.cache != nil {
		if err := r.cache.InvalidateGigDocuments(ctx, gigID); err != nil {
			r.logger.Warn("failed to invalidate documents cache", "gig_id", gigID, "error", err)
		}
	}

	if r.pubsub != nil {
		if err := r.pubsub.PublishDocumentChanged(ctx, gigID, docID); err != nil {
			r.logger.Warn("failed to publish document change", "gig_id", gigID, "error", err)
		}
	}
}
