package models

import (
	"time"

	"github.com/google/uuid"
)

// User statuses
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusInvited   = "invited"
)

// User is a staff login identity for the admin surface. Users are never
// hard-deleted; deactivation keeps historical audit actors resolvable.
type User struct {
	ID                   uuid.UUID  `json:"id"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	Role                 string     `json:"role"`
	FirstName            *string    `json:"first_name,omitempty"`
	LastName             *string    `json:"last_name,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	Status               string     `json:"status"`
	CanSendSMS           bool       `json:"can_send_sms"`
	IsActive             bool       `json:"is_active"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
	LastPasswordChangeAt *time.Time `json:"last_password_change_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Snapshot returns the user as an audit snapshot with the credential redacted.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"id":           u.ID.String(),
		"email":        u.Email,
		"role":         u.Role,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"phone":        u.Phone,
		"status":       u.Status,
		"can_send_sms": u.CanSendSMS,
		"is_active":    u.IsActive,
	}
}
