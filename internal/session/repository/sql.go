package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ninadrathod/my-website/internal/db"
	"github.com/ninadrathod/my-website/internal/session/domain"
)

const (
	getSessionSQL = `SELECT session_id, expires_at, created_at, updated_at FROM sessions WHERE session_id = $1`

	upsertSessionSQL = `INSERT INTO sessions (session_id, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (session_id) DO UPDATE SET expires_at = excluded.expires_at, updated_at = excluded.updated_at`

	insertSessionSQL = `INSERT INTO sessions (session_id, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (session_id) DO NOTHING`
)

// SQLRepository stores sessions in the sessions table of Postgres or SQLite.
type SQLRepository struct {
	db        *sql.DB
	getSQL    string
	saveSQL   string
	insertSQL string
}

// NewSQLRepository returns a session repository over conn, with queries bound for dialect.
func NewSQLRepository(conn *sql.DB, dialect db.Dialect) *SQLRepository {
	return &SQLRepository{
		db:        conn,
		getSQL:    dialect.Rebind(getSessionSQL),
		saveSQL:   dialect.Rebind(upsertSessionSQL),
		insertSQL: dialect.Rebind(insertSessionSQL),
	}
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	var expires, created, updated int64
	err := r.db.QueryRowContext(ctx, r.getSQL, id).Scan(&s.ID, &expires, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.ExpiresAt = time.UnixMilli(expires).UTC()
	s.CreatedAt = time.UnixMilli(created).UTC()
	s.UpdatedAt = time.UnixMilli(updated).UTC()
	return &s, nil
}

// Upsert is one INSERT ... ON CONFLICT DO UPDATE statement, so concurrent writers for the
// same id never lose an update or duplicate a row.
func (r *SQLRepository) Upsert(ctx context.Context, id string, expiresAt, now time.Time) error {
	_, err := r.db.ExecContext(ctx, r.saveSQL, id, expiresAt.UnixMilli(), now.UnixMilli())
	return err
}

// Insert relies on ON CONFLICT DO NOTHING; RowsAffected tells whether this call created the row.
func (r *SQLRepository) Insert(ctx context.Context, id string, expiresAt, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.insertSQL, id, expiresAt.UnixMilli(), now.UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
