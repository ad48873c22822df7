// Package events publishes template lifecycle events for downstream systems
// (CRM sync, audit, notifications).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	TemplateCreated      = "template.created"
	TemplateSaved        = "template.saved"
	TemplateDeleted      = "template.deleted"
	TemplateDuplicated   = "template.duplicated"
	TemplateTransitioned = "template.status_changed"
	AgreementFinalized   = "agreement.finalized"
)

type Event struct {
	Type       string                 `json:"type"`
	TenantID   string                 `json:"tenantId,omitempty"`
	TemplateID string                 `json:"templateId"`
	Actor      string                 `json:"actor,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// RedisPublisher appends events to a Redis stream as a JSON "data" entry.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, maxLen: 10000}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":      e.Type,
			"data":      string(data),
			"timestamp": e.OccurredAt.Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", e.Type, p.stream, err)
	}
	return nil
}
