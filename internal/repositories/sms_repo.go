package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/local1284/membership/internal/models"
)

type SMSRepo struct {
	pool *pgxpool.Pool
}

func NewSMSRepo(pool *pgxpool.Pool) *SMSRepo {
	return &SMSRepo{pool: pool}
}

func (r *SMSRepo) Create(ctx context.Context, m *models.SMSMessage) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO sms_messages (to_number, member_id, body, status, provider_sid, error_message,
			segment_type, segment_filter_summary, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, m.To, m.MemberID, m.Body, m.Status, m.ProviderSID, m.ErrorMessage,
		m.SegmentType, m.SegmentFilterSummary, m.CreatedBy).
		Scan(&m.ID, &m.CreatedAt)
}

func (r *SMSRepo) ListRecent(ctx context.Context, limit int) ([]models.SMSMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, to_number, member_id, body, status, provider_sid, error_message,
			segment_type, segment_filter_summary, created_by, created_at
		FROM sms_messages ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.SMSMessage
	for rows.Next() {
		var m models.SMSMessage
		if err := rows.Scan(&m.ID, &m.To, &m.MemberID, &m.Body, &m.Status, &m.ProviderSID, &m.ErrorMessage,
			&m.SegmentType, &m.SegmentFilterSummary, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
