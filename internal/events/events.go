package events

import "context"

// EventAuditRecorded is emitted for every appended audit entry.
const EventAuditRecorded = "audit_recorded"

// StreamAudit is the pub/sub channel the admin live feed subscribes to.
const StreamAudit = "events:audit"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
