package models

import (
	"encoding/json"
	"time"
)

// Audit actions are namespaced "entity.verb" strings.
const (
	ActionMemberCreate      = "member.create"
	ActionMemberUpdate      = "member.update"
	ActionMemberDelete      = "member.delete"
	ActionMemberExport      = "member.export"
	ActionNewsCreate        = "news.create"
	ActionNewsUpdate        = "news.update"
	ActionNewsDelete        = "news.delete"
	ActionUserLogin         = "user.login"
	ActionUserLogout        = "user.logout"
	ActionUserPasswordReset = "user.password_reset"
	ActionAdminUserCreate   = "admin_user.create"
	ActionAdminUserUpdate   = "admin_user.update"
	ActionSMSBroadcast      = "sms.broadcast"
	ActionAdminTask         = "admin.task"
)

// Actor is a denormalized snapshot of the acting identity at action time.
// Later changes to the identity never alter historical entries. Nil actor
// means a system-triggered event.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuditEntry is one append-only record of a state-changing action. Entries
// are never updated or deleted through the application surface.
type AuditEntry struct {
	ID         string          `json:"id"` // ULID, sortable by creation time
	Actor      *Actor          `json:"actor,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"` // full snapshot, not a diff
	After      json.RawMessage `json:"after,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Snapshot marshals v for use as a before/after snapshot. A nil input stays
// nil so "no prior state" is distinguishable from an empty object.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
