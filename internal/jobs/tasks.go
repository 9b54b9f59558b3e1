// Package jobs runs the asynq worker: deferred document uploads and the
// periodic spreadsheet export.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	TaskDocumentSync = "documents:sync"
	TaskSheetsSync   = "sheets:sync"
)

// DocumentSyncPayload carries the rendered file of a document that was
// saved without a store reference.
type DocumentSyncPayload struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	File       []byte `json:"file"`
}

func NewDocumentSyncTask(p DocumentSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentSync, body, asynq.Queue(QueueDefault), asynq.MaxRetry(10)), nil
}

type SheetsSyncPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

func NewSheetsSyncTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SheetsSyncPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSheetsSync, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// Client submits jobs. It implements quote.SyncQueue.
type Client struct {
	client *asynq.Client
}

func NewClient(opts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(opts)}
}

func (c *Client) EnqueueSync(ctx context.Context, docID, fileName string, file []byte) error {
	const op = "jobs.Client.EnqueueSync"

	task, err := NewDocumentSyncTask(DocumentSyncPayload{DocumentID: docID, FileName: fileName, File: file})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// EnqueueSheetsSync requests an export outside the schedule.
func (c *Client) EnqueueSheetsSync(ctx context.Context) error {
	const op = "jobs.Client.EnqueueSheetsSync"

	task, err := NewSheetsSyncTask(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
