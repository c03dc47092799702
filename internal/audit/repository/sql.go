package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ninadrathod/my-website/internal/audit/domain"
	"github.com/ninadrathod/my-website/internal/db"
)

const (
	createAuditLogSQL = `INSERT INTO audit_logs (id, session_id, actor, action, outcome, ip, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	listAuditLogsBySessionSQL = `SELECT id, session_id, actor, action, outcome, ip, metadata, created_at
FROM audit_logs WHERE session_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
)

// SQLRepository stores audit logs in Postgres or SQLite.
type SQLRepository struct {
	db        *sql.DB
	createSQL string
	listSQL   string
}

// NewSQLRepository returns an audit log repository over conn, with queries bound for dialect.
func NewSQLRepository(conn *sql.DB, dialect db.Dialect) *SQLRepository {
	return &SQLRepository{
		db:        conn,
		createSQL: dialect.Rebind(createAuditLogSQL),
		listSQL:   dialect.Rebind(listAuditLogsBySessionSQL),
	}
}

// Create persists the audit log. The audit log must have ID set.
func (r *SQLRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx, r.createSQL,
		a.ID, a.SessionID, a.Actor, a.Action, a.Outcome, a.IP, meta, a.CreatedAt.UnixMilli())
	return err
}

func (r *SQLRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, r.listSQL, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var meta sql.NullString
		var created int64
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Actor, &a.Action, &a.Outcome, &a.IP, &meta, &created); err != nil {
			return nil, err
		}
		a.Metadata = meta.String
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, &a)
	}
	return out, rows.Err()
}
