package models

import (
	"time"

	"github.com/google/uuid"
)

// Member statuses mirror the bargaining-unit codes used by the local.
const (
	MemberStatusHBU   = "HBU"
	MemberStatusSBU   = "SBU"
	MemberStatusTRA   = "TRA"
	MemberStatusInPro = "INPRO"
)

// Communication channels
const (
	CommChannelSMS      = "sms"
	CommChannelEmail    = "email"
	CommChannelCall     = "call"
	CommChannelInPerson = "in-person"
	CommChannelOther    = "other"
)

type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// CommunicationLogEntry records one outreach touch with a member.
type CommunicationLogEntry struct {
	At        time.Time      `json:"at"`
	Channel   string         `json:"channel"`
	Direction string         `json:"direction"` // outbound/inbound
	Subject   string         `json:"subject,omitempty"`
	Message   string         `json:"message,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedBy *uuid.UUID     `json:"created_by,omitempty"`
}

type Member struct {
	ID               uuid.UUID               `json:"id"`
	CID              *string                 `json:"cid,omitempty"`
	UID              *string                 `json:"uid,omitempty"`
	FirstName        string                  `json:"first_name"`
	LastName         string                  `json:"last_name"`
	Address          Address                 `json:"address"`
	Email            *string                 `json:"email,omitempty"`
	Phone            *string                 `json:"phone,omitempty"`
	SeniorityDate    *time.Time              `json:"seniority_date,omitempty"`
	Status           string                  `json:"status"`
	DepartmentNumber *string                 `json:"department_number,omitempty"`
	DepartmentName   *string                 `json:"department_name,omitempty"`
	Tags             []string                `json:"tags"`
	SMSGroups        []string                `json:"sms_groups"`
	InternalNotes    *string                 `json:"internal_notes,omitempty"`
	CommunicationLog []CommunicationLogEntry `json:"communication_log,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func IsValidMemberStatus(s string) bool {
	switch s {
	case MemberStatusHBU, MemberStatusSBU, MemberStatusTRA, MemberStatusInPro:
		return true
	}
	return false
}
