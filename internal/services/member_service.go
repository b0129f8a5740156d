package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/repositories"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// MemberUpdate is a partial member mutation. Nil fields are untouched.
type MemberUpdate struct {
	CID              *string
	UID              *string
	FirstName        *string
	LastName         *string
	Address          *models.Address
	Email            *string
	Phone            *string
	SeniorityDate    *time.Time
	Status           *string
	DepartmentNumber *string
	DepartmentName   *string
	Tags             *[]string
	SMSGroups        *[]string
	InternalNotes    *string
}

// Fields lists the names of the fields this update touches, in the naming
// the field-level guard checks against.
func (u MemberUpdate) Fields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	add("cid", u.CID != nil)
	add("uid", u.UID != nil)
	add("first_name", u.FirstName != nil)
	add("last_name", u.LastName != nil)
	add("address", u.Address != nil)
	add("email", u.Email != nil)
	add("phone", u.Phone != nil)
	add("seniority_date", u.SeniorityDate != nil)
	add("status", u.Status != nil)
	add("department_number", u.DepartmentNumber != nil)
	add("department_name", u.DepartmentName != nil)
	add("tags", u.Tags != nil)
	add("sms_groups", u.SMSGroups != nil)
	add("internal_notes", u.InternalNotes != nil)
	return fields
}

func (u MemberUpdate) apply(m *models.Member) {
	if u.CID != nil {
		m.CID = u.CID
	}
	if u.UID != nil {
		m.UID = u.UID
	}
	if u.FirstName != nil {
		m.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		m.LastName = *u.LastName
	}
	if u.Address != nil {
		m.Address = *u.Address
	}
	if u.Email != nil {
		m.Email = u.Email
	}
	if u.Phone != nil {
		m.Phone = u.Phone
	}
	if u.SeniorityDate != nil {
		m.SeniorityDate = u.SeniorityDate
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	if u.DepartmentNumber != nil {
		m.DepartmentNumber = u.DepartmentNumber
	}
	if u.DepartmentName != nil {
		m.DepartmentName = u.DepartmentName
	}
	if u.Tags != nil {
		m.Tags = *u.Tags
	}
	if u.SMSGroups != nil {
		m.SMSGroups = *u.SMSGroups
	}
	if u.InternalNotes != nil {
		m.InternalNotes = u.InternalNotes
	}
}

// MemberStore is the persistence surface MemberService depends on.
// *repositories.MemberRepo satisfies it.
type MemberStore interface {
	Create(ctx context.Context, m *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	Update(ctx context.Context, m *models.Member) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.MemberFilter) ([]models.Member, int, error)
}

type MemberService struct {
	memberRepo MemberStore
	audit      *AuditTrail
	log        *zap.Logger
}

func NewMemberService(memberRepo MemberStore, audit *AuditTrail, log *zap.Logger) *MemberService {
	return &MemberService{memberRepo: memberRepo, audit: audit, log: log}
}

func (s *MemberService) Create(ctx context.Context, caller Caller, m *models.Member) error {
	if m.Status == "" {
		m.Status = models.MemberStatusHBU
	}
	if !models.IsValidMemberStatus(m.Status) {
		return fmt.Errorf("invalid member status %q", m.Status)
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.SMSGroups == nil {
		m.SMSGroups = []string{}
	}

	if err := s.memberRepo.Create(ctx, m); err != nil {
		return err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionMemberCreate,
		EntityType: "member",
		EntityID:   m.ID.String(),
		Before:     nil,
		After:      m,
		Notes:      "Member created via API",
	})
	return nil
}

func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	m, err := s.memberRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *MemberService) List(ctx context.Context, f repositories.MemberFilter) ([]models.Member, int, error) {
	return s.memberRepo.List(ctx, f)
}

// Update applies a partial mutation and records the before/after bracket.
// The before snapshot is read here, after the caller's authorization has
// admitted the mutation, so concurrent edits cannot produce a stale bracket.
func (s *MemberService) Update(ctx context.Context, caller Caller, id uuid.UUID, update MemberUpdate) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if update.Status != nil && !models.IsValidMemberStatus(*update.Status) {
		return nil, fmt.Errorf("invalid member status %q", *update.Status)
	}

	before := *member
	update.apply(member)

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionMemberUpdate,
		EntityType: "member",
		EntityID:   member.ID.String(),
		Before:     &before,
		After:      member,
		Notes:      "Member updated via API",
	})
	return member, nil
}

func (s *MemberService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionMemberDelete,
		EntityType: "member",
		EntityID:   id.String(),
		Before:     member,
		After:      nil,
		Notes:      "Member deleted via API",
	})
	return nil
}

// Export returns the filtered member set and audits the disclosure.
func (s *MemberService) Export(ctx context.Context, caller Caller, f repositories.MemberFilter) ([]models.Member, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	members, _, err := s.memberRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionMemberExport,
		EntityType: "member",
		EntityID:   "export",
		Metadata: map[string]any{
			"format": "json",
			"status": f.Status,
			"count":  len(members),
		},
	})
	return members, nil
}
