package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/kirinyoku/tourdesk/internal/observability"
	"github.com/kirinyoku/tourdesk/internal/quote"
	"github.com/kirinyoku/tourdesk/internal/sheets"
)

type RefAttacher interface {
	AttachStoreRef(ctx context.Context, id, ref string) error
}

// DocumentSyncJob retries the upload of a locally saved document.
type DocumentSyncJob struct {
	store   quote.DocumentStore
	refs    RefAttacher
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewDocumentSyncJob(store quote.DocumentStore, refs RefAttacher, logger *slog.Logger, metrics *observability.Metrics) *DocumentSyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentSyncJob{store: store, refs: refs, logger: logger, metrics: metrics}
}

func (j *DocumentSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	var p DocumentSyncPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.DocumentID == "" || len(p.File) == 0 {
		return fmt.Errorf("documents sync: bad payload: %w", asynq.SkipRetry)
	}

	return j.metrics.Track(TaskDocumentSync).End(j.run(ctx, p))
}

func (j *DocumentSyncJob) run(ctx context.Context, p DocumentSyncPayload) error {
	ref, err := j.store.Upload(ctx, p.File, p.FileName)
	if err != nil {
		// an unconfigured store never comes back on its own
		if errors.Is(err, quote.ErrStoreUnavailable) {
			j.logger.Warn("document store not configured, dropping sync", "document_id", p.DocumentID)
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return err
	}

	if err := j.refs.AttachStoreRef(ctx, p.DocumentID, ref); err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return err
	}

	j.logger.Info("document synced", "document_id", p.DocumentID)

	return nil
}

type Syncer interface {
	Sync(ctx context.Context) error
}

type SheetsSyncJob struct {
	syncer  Syncer
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewSheetsSyncJob(syncer Syncer, logger *slog.Logger, metrics *observability.Metrics) *SheetsSyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsSyncJob{syncer: syncer, logger: logger, metrics: metrics}
}

func (j *SheetsSyncJob) Handle(ctx context.Context, _ *asynq.Task) error {
	err := j.syncer.Sync(ctx)
	if errors.Is(err, sheets.ErrNotConfigured) {
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	}

	return j.metrics.Track(TaskSheetsSync).End(err)
}
