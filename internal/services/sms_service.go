package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/metrics"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/repositories"
	"go.uber.org/zap"
)

// ErrEmptySegment is returned when a broadcast segment matches no
// members with a phone number on file.
var ErrEmptySegment = errors.New("segment matched no members with a phone number")

// BroadcastSegment selects the recipients of one SMS broadcast.
type BroadcastSegment struct {
	Type     string
	Filter   repositories.MemberFilter
	SMSGroup string
	Tags     []string
}

// Summary renders the human-readable segment description stored with
// each message row and the audit entry.
func (seg BroadcastSegment) Summary() string {
	switch seg.Type {
	case models.SegmentAllMembers:
		return "all members"
	case models.SegmentSMSGroup:
		return "sms group " + seg.SMSGroup
	case models.SegmentTags:
		return "tags " + strings.Join(seg.Tags, ", ")
	case models.SegmentFilter:
		var parts []string
		if seg.Filter.Status != "" {
			parts = append(parts, "status="+seg.Filter.Status)
		}
		if seg.Filter.DepartmentNumber != "" {
			parts = append(parts, "department="+seg.Filter.DepartmentNumber)
		}
		if seg.Filter.Name != "" {
			parts = append(parts, "name="+seg.Filter.Name)
		}
		if len(parts) == 0 {
			return "filter"
		}
		return "filter " + strings.Join(parts, " ")
	}
	return seg.Type
}

// BroadcastResult reports the per-recipient outcome counts.
type BroadcastResult struct {
	Matched int `json:"matched"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

type SMSService struct {
	memberRepo *repositories.MemberRepo
	smsRepo    *repositories.SMSRepo
	client     SMSClient
	audit      *AuditTrail
	cfg        *config.Config
	log        *zap.Logger
}

func NewSMSService(memberRepo *repositories.MemberRepo, smsRepo *repositories.SMSRepo,
	client SMSClient, audit *AuditTrail, cfg *config.Config, log *zap.Logger) *SMSService {
	return &SMSService{memberRepo: memberRepo, smsRepo: smsRepo, client: client,
		audit: audit, cfg: cfg, log: log}
}

func (s *SMSService) Groups(ctx context.Context) ([]string, error) {
	return s.memberRepo.DistinctSMSGroups(ctx)
}

func (s *SMSService) ListRecent(ctx context.Context, limit int) ([]models.SMSMessage, error) {
	return s.smsRepo.ListRecent(ctx, limit)
}

func (s *SMSService) resolveRecipients(ctx context.Context, seg BroadcastSegment) ([]models.Member, error) {
	f := repositories.MemberFilter{RequirePhone: true, Limit: 10000}
	switch seg.Type {
	case models.SegmentAllMembers:
	case models.SegmentSMSGroup:
		if seg.SMSGroup == "" {
			return nil, fmt.Errorf("sms-group segment requires a group name")
		}
		f.SMSGroup = seg.SMSGroup
	case models.SegmentTags:
		if len(seg.Tags) == 0 {
			return nil, fmt.Errorf("tags segment requires at least one tag")
		}
		f.AnyTags = seg.Tags
	case models.SegmentFilter:
		f = seg.Filter
		f.RequirePhone = true
		f.Limit = 10000
		f.Offset = 0
	default:
		return nil, fmt.Errorf("unknown segment type %q", seg.Type)
	}

	members, _, err := s.memberRepo.List(ctx, f)
	return members, err
}

// Broadcast sends body to every member matched by the segment. Each
// recipient gets its own message row and a communication log touch;
// one failed send never aborts the rest of the fan-out.
func (s *SMSService) Broadcast(ctx context.Context, caller Caller, seg BroadcastSegment, body string) (*BroadcastResult, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("message body must not be empty")
	}
	if len(body) > s.cfg.SMSMaxBodyLength {
		return nil, fmt.Errorf("message body exceeds %d characters", s.cfg.SMSMaxBodyLength)
	}

	recipients, err := s.resolveRecipients(ctx, seg)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrEmptySegment
	}

	var createdBy *uuid.UUID
	if caller.Actor != nil {
		if id, err := uuid.Parse(caller.Actor.ID); err == nil {
			createdBy = &id
		}
	}

	summary := seg.Summary()
	result := &BroadcastResult{Matched: len(recipients)}

	for i := range recipients {
		m := &recipients[i]
		memberID := m.ID

		msg := models.SMSMessage{
			To:                   *m.Phone,
			MemberID:             &memberID,
			Body:                 body,
			Status:               models.SMSStatusQueued,
			SegmentType:          seg.Type,
			SegmentFilterSummary: summary,
			CreatedBy:            createdBy,
		}

		sid, sendErr := s.client.Send(ctx, *m.Phone, body)
		if errors.Is(sendErr, ErrSMSDisabled) && result.Sent == 0 && result.Failed == 0 {
			return nil, ErrSMSDisabled
		}
		if sendErr != nil {
			msg.Status = models.SMSStatusFailed
			errText := sendErr.Error()
			msg.ErrorMessage = &errText
			result.Failed++
			s.log.Warn("sms send failed",
				zap.Error(sendErr),
				zap.String("member_id", memberID.String()))
		} else {
			msg.Status = models.SMSStatusSent
			if sid != "" {
				msg.ProviderSID = &sid
			}
			result.Sent++
		}
		metrics.CountSMSSend(msg.Status)

		if err := s.smsRepo.Create(ctx, &msg); err != nil {
			s.log.Error("failed to persist sms message", zap.Error(err))
		}

		if msg.Status == models.SMSStatusSent {
			entry := models.CommunicationLogEntry{
				At:        time.Now(),
				Channel:   models.CommChannelSMS,
				Direction: "outbound",
				Message:   body,
				Meta:      map[string]any{"segment": summary},
				CreatedBy: createdBy,
			}
			if err := s.memberRepo.AppendCommunicationLog(ctx, memberID, entry); err != nil {
				s.log.Warn("failed to append communication log",
					zap.Error(err),
					zap.String("member_id", memberID.String()))
			}
		}
	}

	s.audit.RecordChange(ctx, Change{
		Caller:     caller,
		Action:     models.ActionSMSBroadcast,
		EntityType: "sms_broadcast",
		EntityID:   summary,
		Metadata: map[string]any{
			"segment_type": seg.Type,
			"segment":      summary,
			"matched":      result.Matched,
			"sent":         result.Sent,
			"failed":       result.Failed,
		},
	})
	return result, nil
}
