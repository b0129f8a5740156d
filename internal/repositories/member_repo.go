package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/local1284/membership/internal/models"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

// MemberFilter narrows list/export/broadcast queries.
type MemberFilter struct {
	Name             string
	CID              string
	UID              string
	Status           string
	DepartmentNumber string
	SMSGroup         string
	Tag              string
	AnyTags          []string
	SeniorityFrom    *time.Time
	SeniorityTo      *time.Time
	RequirePhone     bool
	Limit            int
	Offset           int
}

const memberColumns = `id, cid, uid, first_name, last_name, address, email, phone, seniority_date,
	status, department_number, department_name, tags, sms_groups, internal_notes, communication_log,
	created_at, updated_at`

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID, &m.CID, &m.UID, &m.FirstName, &m.LastName, &m.Address, &m.Email, &m.Phone, &m.SeniorityDate,
		&m.Status, &m.DepartmentNumber, &m.DepartmentName, &m.Tags, &m.SMSGroups, &m.InternalNotes, &m.CommunicationLog,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) Create(ctx context.Context, m *models.Member) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO members (cid, uid, first_name, last_name, address, email, phone, seniority_date,
			status, department_number, department_name, tags, sms_groups, internal_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, m.CID, m.UID, m.FirstName, m.LastName, m.Address, m.Email, m.Phone, m.SeniorityDate,
		m.Status, m.DepartmentNumber, m.DepartmentName, m.Tags, m.SMSGroups, m.InternalNotes).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

func (r *MemberRepo) Update(ctx context.Context, m *models.Member) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE members SET cid = $1, uid = $2, first_name = $3, last_name = $4, address = $5,
			email = $6, phone = $7, seniority_date = $8, status = $9, department_number = $10,
			department_name = $11, tags = $12, sms_groups = $13, internal_notes = $14, updated_at = now()
		WHERE id = $15
	`, m.CID, m.UID, m.FirstName, m.LastName, m.Address, m.Email, m.Phone, m.SeniorityDate,
		m.Status, m.DepartmentNumber, m.DepartmentName, m.Tags, m.SMSGroups, m.InternalNotes, m.ID)
	return err
}

func (r *MemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	return err
}

func buildMemberWhere(f MemberFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Name != "" {
		args = append(args, f.Name)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(first_name ILIKE '%%' || $%d || '%%' OR last_name ILIKE '%%' || $%d || '%%')`, n, n))
	}
	if f.CID != "" {
		add(`cid = $%d`, strings.TrimSpace(f.CID))
	}
	if f.UID != "" {
		add(`uid = $%d`, strings.TrimSpace(f.UID))
	}
	if f.Status != "" {
		add(`status = $%d`, f.Status)
	}
	if f.DepartmentNumber != "" {
		add(`department_number = $%d`, strings.TrimSpace(f.DepartmentNumber))
	}
	if f.SMSGroup != "" {
		add(`$%d = ANY(sms_groups)`, f.SMSGroup)
	}
	if f.Tag != "" {
		add(`$%d = ANY(tags)`, f.Tag)
	}
	if len(f.AnyTags) > 0 {
		add(`tags && $%d`, f.AnyTags)
	}
	if f.SeniorityFrom != nil {
		add(`seniority_date >= $%d`, *f.SeniorityFrom)
	}
	if f.SeniorityTo != nil {
		add(`seniority_date <= $%d`, *f.SeniorityTo)
	}
	if f.RequirePhone {
		conds = append(conds, `phone IS NOT NULL AND phone <> ''`)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of members plus the unpaged total for the filter.
func (r *MemberRepo) List(ctx context.Context, f MemberFilter) ([]models.Member, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	where, args := buildMemberWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM members`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM members%s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		memberColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *m)
	}
	return members, total, rows.Err()
}

// DistinctSMSGroups lists every group name referenced by at least one member.
func (r *MemberRepo) DistinctSMSGroups(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT unnest(sms_groups) AS g FROM members ORDER BY g`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AppendCommunicationLog pushes one touch onto the member's log.
func (r *MemberRepo) AppendCommunicationLog(ctx context.Context, id uuid.UUID, entry models.CommunicationLogEntry) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE members
		SET communication_log = communication_log || $1::jsonb, updated_at = now()
		WHERE id = $2
	`, []models.CommunicationLogEntry{entry}, id)
	return err
}
