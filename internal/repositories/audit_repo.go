package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/local1284/membership/internal/ids"
	"github.com/local1284/membership/internal/models"
)

// AuditRepo appends to and reads from the audit log. There is deliberately
// no update or delete method.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// AuditFilter narrows Query. Zero values are ignored.
type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Since      *time.Time
	Limit      int
}

// Record appends one entry. Assigns a time-ordered id when the caller did
// not provide one.
func (r *AuditRepo) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}

	var actorID *string
	if entry.Actor != nil {
		actorID = &entry.Actor.ID
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_log (id, actor, actor_id, action, entity_type, entity_id,
			before_snapshot, after_snapshot, metadata, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, entry.ID, entry.Actor, actorID, entry.Action, entry.EntityType, entry.EntityID,
		entry.Before, entry.After, entry.Metadata, entry.IPAddress).
		Scan(&entry.CreatedAt)
}

// Query reads entries newest-first. The composite indexes on
// (entity_type, entity_id, created_at) and (actor_id, created_at) back the
// two hot lookup paths.
func (r *AuditRepo) Query(ctx context.Context, f AuditFilter) ([]models.AuditEntry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}

	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.EntityType != "" {
		add(`entity_type = $%d`, f.EntityType)
	}
	if f.EntityID != "" {
		add(`entity_id = $%d`, f.EntityID)
	}
	if f.ActorID != "" {
		add(`actor_id = $%d`, f.ActorID)
	}
	if f.Action != "" {
		add(`action = $%d`, f.Action)
	}
	if f.Since != nil {
		add(`created_at >= $%d`, *f.Since)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, actor, action, entity_type, entity_id, before_snapshot, after_snapshot,
			metadata, ip_address, created_at
		FROM audit_log%s ORDER BY created_at DESC LIMIT $%d
	`, where, len(args)+1)

	rows, err := r.pool.Query(ctx, query, append(args, f.Limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var ip *string
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityType, &e.EntityID,
			&e.Before, &e.After, &e.Metadata, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		if ip != nil {
			e.IPAddress = *ip
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
