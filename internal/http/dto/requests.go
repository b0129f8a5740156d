package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AddressPayload struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type CreateMemberRequest struct {
	CID              *string         `json:"cid"`
	UID              *string         `json:"uid"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Address          *AddressPayload `json:"address"`
	Email            *string         `json:"email"`
	Phone            *string         `json:"phone"`
	SeniorityDate    *time.Time      `json:"seniority_date"`
	Status           string          `json:"status"`
	DepartmentNumber *string         `json:"department_number"`
	DepartmentName   *string         `json:"department_name"`
	Tags             []string        `json:"tags"`
	SMSGroups        []string        `json:"sms_groups"`
	InternalNotes    *string         `json:"internal_notes"`
}

// UpdateMemberRequest is a partial update; absent fields stay untouched.
type UpdateMemberRequest struct {
	CID              *string         `json:"cid"`
	UID              *string         `json:"uid"`
	FirstName        *string         `json:"first_name"`
	LastName         *string         `json:"last_name"`
	Address          *AddressPayload `json:"address"`
	Email            *string         `json:"email"`
	Phone            *string         `json:"phone"`
	SeniorityDate    *time.Time      `json:"seniority_date"`
	Status           *string         `json:"status"`
	DepartmentNumber *string         `json:"department_number"`
	DepartmentName   *string         `json:"department_name"`
	Tags             *[]string       `json:"tags"`
	SMSGroups        *[]string       `json:"sms_groups"`
	InternalNotes    *string         `json:"internal_notes"`
}

type CreateNewsRequest struct {
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Excerpt   *string `json:"excerpt"`
	Body      string  `json:"body"`
	Published bool    `json:"published"`
}

type UpdateNewsRequest struct {
	Title     *string `json:"title"`
	Slug      *string `json:"slug"`
	Excerpt   *string `json:"excerpt"`
	Body      *string `json:"body"`
	Published *bool   `json:"published"`
}

type CreateUserRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	CanSendSMS bool    `json:"can_send_sms"`
}

type UpdateUserRequest struct {
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	Status     *string `json:"status"`
	CanSendSMS *bool   `json:"can_send_sms"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SegmentFilterPayload narrows a filter-segment broadcast.
type SegmentFilterPayload struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	DepartmentNumber string `json:"department_number"`
}

type SMSBroadcastRequest struct {
	SegmentType string                `json:"segment_type"`
	SMSGroup    string                `json:"sms_group"`
	Tags        []string              `json:"tags"`
	Filter      *SegmentFilterPayload `json:"filter"`
	Body        string                `json:"body"`
}

type AdminActionRequest struct {
	Task string `json:"task"`
}
