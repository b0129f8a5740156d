package services

import (
	"context"

	"github.com/local1284/membership/internal/events"
	"github.com/local1284/membership/internal/metrics"
	"github.com/local1284/membership/internal/models"
	"go.uber.org/zap"
)

// AuditStore is the append side of the audit log.
type AuditStore interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

// Caller carries the acting identity and request context into services so
// every mutation can be audited and correlated.
type Caller struct {
	Actor     *models.Actor
	IP        string
	RequestID string
}

// AuditTrail records state-changing actions. Writes are best-effort relative
// to the already-committed business mutation: a failed append is reported to
// logging and metrics but never unwinds the mutation. That asymmetry is a
// named risk of this design.
type AuditTrail struct {
	store     AuditStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewAuditTrail(store AuditStore, publisher events.Publisher, log *zap.Logger) *AuditTrail {
	return &AuditTrail{store: store, publisher: publisher, log: log}
}

// Change describes one bracketed mutation. Before and After are full
// snapshots, not diffs; nil means no state on that side.
type Change struct {
	Caller     Caller
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
	Notes      string
	Metadata   map[string]any
}

// Record appends the entry and fans it out to the live feed.
func (t *AuditTrail) Record(ctx context.Context, entry *models.AuditEntry) {
	if err := t.store.Record(ctx, entry); err != nil {
		metrics.CountAuditWriteFailure()
		t.log.Error("audit write failed",
			zap.Error(err),
			zap.String("action", entry.Action),
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID))
		return
	}

	if t.publisher == nil {
		return
	}
	event := events.Event{
		Type: events.EventAuditRecorded,
		Payload: map[string]any{
			"id":          entry.ID,
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
			"created_at":  entry.CreatedAt,
		},
	}
	if entry.Actor != nil {
		event.Payload["actor_email"] = entry.Actor.Email
	}
	if err := t.publisher.Publish(ctx, events.StreamAudit, event); err != nil {
		t.log.Warn("audit event publish failed", zap.Error(err))
	}
}

// RecordChange builds the before/after bracketed entry for a mutation.
func (t *AuditTrail) RecordChange(ctx context.Context, ch Change) {
	metadata := make(map[string]any, len(ch.Metadata)+2)
	for k, v := range ch.Metadata {
		metadata[k] = v
	}
	if ch.Notes != "" {
		metadata["notes"] = ch.Notes
	}
	if ch.Caller.RequestID != "" {
		metadata["request_id"] = ch.Caller.RequestID
	}

	t.Record(ctx, &models.AuditEntry{
		Actor:      ch.Caller.Actor,
		Action:     ch.Action,
		EntityType: ch.EntityType,
		EntityID:   ch.EntityID,
		Before:     models.Snapshot(ch.Before),
		After:      models.Snapshot(ch.After),
		Metadata:   metadata,
		IPAddress:  ch.Caller.IP,
	})
}
