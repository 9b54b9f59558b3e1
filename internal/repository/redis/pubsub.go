package redis

import (
	"context"
	"encoding/json"
	"time"

	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	"github.com/redis/go-redis/v9"
)

// DocumentsPubSub fans out "documents of a gig changed" notifications so
// every instance can drop its cached views.
type DocumentsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewDocumentsPubSub(rdb *redis.Client) *DocumentsPubSub {
	return &DocumentsPubSub{
		rdb:     rdb,
		channel: redisx.ChannelDocumentsChanged(),
	}
}

type documentChangedMsg struct {
	Type       string `json:"type"`
	GigID      string `json:"gig_id"`
	DocumentID string `json:"document_id"`
	TsUnix     int64  `json:"ts_unix"`
}

func (p *DocumentsPubSub) PublishDocumentChanged(ctx context.Context, gigID, documentID string) error {
	msg := documentChangedMsg{
		Type:       "document_changed",
		GigID:      gigID,
		DocumentID: documentID,
		TsUnix:     time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks until ctx is done, calling handler for every valid message.
func (p *DocumentsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, gigID, documentID string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev documentChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil && ev.GigID != "" {
				handler(ctx, ev.GigID, ev.DocumentID)
			}
		}
	}
}
