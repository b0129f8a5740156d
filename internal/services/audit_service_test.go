package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/local1284/membership/internal/events"
	"github.com/local1284/membership/internal/models"
	"go.uber.org/zap"
)

type fakeAuditStore struct {
	entries []*models.AuditEntry
	err     error
}

func (s *fakeAuditStore) Record(_ context.Context, entry *models.AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type fakePublisher struct {
	published []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func TestRecordChangeBracketsSnapshots(t *testing.T) {
	store := &fakeAuditStore{}
	trail := NewAuditTrail(store, nil, zap.NewNop())

	before := map[string]any{"status": "HBU"}
	after := map[string]any{"status": "SBU"}

	trail.RecordChange(context.Background(), Change{
		Caller: Caller{
			Actor:     &models.Actor{ID: "u1", Email: "a@local1284.org", Role: "admin"},
			IP:        "10.0.0.1",
			RequestID: "req-1",
		},
		Action:     models.ActionMemberUpdate,
		EntityType: "member",
		EntityID:   "m1",
		Before:     before,
		After:      after,
		Notes:      "Member updated via API",
	})

	if len(store.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(store.entries))
	}
	e := store.entries[0]

	if e.Action != models.ActionMemberUpdate || e.EntityType != "member" || e.EntityID != "m1" {
		t.Errorf("entry identity wrong: %+v", e)
	}
	if e.Actor == nil || e.Actor.Email != "a@local1284.org" {
		t.Error("actor snapshot missing")
	}
	if e.IPAddress != "10.0.0.1" {
		t.Errorf("ip = %q", e.IPAddress)
	}
	if e.Metadata["notes"] != "Member updated via API" {
		t.Errorf("notes metadata = %v", e.Metadata["notes"])
	}
	if e.Metadata["request_id"] != "req-1" {
		t.Errorf("request_id metadata = %v", e.Metadata["request_id"])
	}

	var gotBefore map[string]any
	if err := json.Unmarshal(e.Before, &gotBefore); err != nil {
		t.Fatalf("before snapshot: %v", err)
	}
	if gotBefore["status"] != "HBU" {
		t.Errorf("before = %v", gotBefore)
	}
	var gotAfter map[string]any
	if err := json.Unmarshal(e.After, &gotAfter); err != nil {
		t.Fatalf("after snapshot: %v", err)
	}
	if gotAfter["status"] != "SBU" {
		t.Errorf("after = %v", gotAfter)
	}
}

func TestRecordChangeNilSidesStayNil(t *testing.T) {
	store := &fakeAuditStore{}
	trail := NewAuditTrail(store, nil, zap.NewNop())

	trail.RecordChange(context.Background(), Change{
		Action:     models.ActionMemberCreate,
		EntityType: "member",
		EntityID:   "m1",
		After:      map[string]any{"status": "HBU"},
	})

	e := store.entries[0]
	if e.Before != nil {
		t.Error("create should have nil before snapshot")
	}
	if e.After == nil {
		t.Error("create should carry an after snapshot")
	}
	if e.Actor != nil {
		t.Error("anonymous change should have nil actor")
	}
}

func TestRecordBestEffortOnStoreFailure(t *testing.T) {
	store := &fakeAuditStore{err: errors.New("db down")}
	pub := &fakePublisher{}
	trail := NewAuditTrail(store, pub, zap.NewNop())

	// Must not panic and must not publish a feed event for a lost entry.
	trail.RecordChange(context.Background(), Change{
		Action:     models.ActionMemberUpdate,
		EntityType: "member",
		EntityID:   "m1",
	})

	if len(pub.published) != 0 {
		t.Error("failed append should not fan out to the live feed")
	}
}

func TestRecordPublishesFeedEvent(t *testing.T) {
	store := &fakeAuditStore{}
	pub := &fakePublisher{}
	trail := NewAuditTrail(store, pub, zap.NewNop())

	trail.RecordChange(context.Background(), Change{
		Caller:     Caller{Actor: &models.Actor{ID: "u1", Email: "a@local1284.org", Role: "admin"}},
		Action:     models.ActionMemberDelete,
		EntityType: "member",
		EntityID:   "m1",
	})

	if len(pub.published) != 1 {
		t.Fatalf("got %d events, want 1", len(pub.published))
	}
	ev := pub.published[0]
	if ev.Type != events.EventAuditRecorded {
		t.Errorf("event type = %q", ev.Type)
	}
	if ev.Payload["action"] != models.ActionMemberDelete {
		t.Errorf("payload action = %v", ev.Payload["action"])
	}
	if ev.Payload["actor_email"] != "a@local1284.org" {
		t.Errorf("payload actor = %v", ev.Payload["actor_email"])
	}
}
