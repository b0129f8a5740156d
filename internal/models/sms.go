package models

import (
	"time"

	"github.com/google/uuid"
)

// SMS message statuses
const (
	SMSStatusQueued = "queued"
	SMSStatusSent   = "sent"
	SMSStatusFailed = "failed"
)

// Broadcast segment types
const (
	SegmentAllMembers = "all-members"
	SegmentFilter     = "filter"
	SegmentSMSGroup   = "sms-group"
	SegmentTags       = "tags"
)

// SMSMessage is one provider send attempt within a broadcast.
type SMSMessage struct {
	ID                   uuid.UUID  `json:"id"`
	To                   string     `json:"to"`
	MemberID             *uuid.UUID `json:"member_id,omitempty"`
	Body                 string     `json:"body"`
	Status               string     `json:"status"`
	ProviderSID          *string    `json:"provider_sid,omitempty"`
	ErrorMessage         *string    `json:"error_message,omitempty"`
	SegmentType          string     `json:"segment_type"`
	SegmentFilterSummary string     `json:"segment_filter_summary"`
	CreatedBy            *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
