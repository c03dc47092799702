package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ninadrathod/my-website/internal/db"
	"github.com/ninadrathod/my-website/internal/otp/domain"
)

const (
	putCodeSQL = `INSERT INTO otp_codes (session_id, email, code_hash, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id) DO UPDATE SET email = excluded.email, code_hash = excluded.code_hash,
issued_at = excluded.issued_at, expires_at = excluded.expires_at`

	takeCodeSQL = `DELETE FROM otp_codes WHERE session_id = $1 RETURNING email, code_hash, issued_at, expires_at`

	deleteCodeIfSQL = `DELETE FROM otp_codes WHERE session_id = $1 AND code_hash = $2`
)

// SQLRepository stores codes in the otp_codes table of Postgres or SQLite.
type SQLRepository struct {
	db       *sql.DB
	putSQL   string
	takeSQL  string
	deleteIf string
}

// NewSQLRepository returns a code repository over conn, with queries bound for dialect.
func NewSQLRepository(conn *sql.DB, dialect db.Dialect) *SQLRepository {
	return &SQLRepository{
		db:       conn,
		putSQL:   dialect.Rebind(putCodeSQL),
		takeSQL:  dialect.Rebind(takeCodeSQL),
		deleteIf: dialect.Rebind(deleteCodeIfSQL),
	}
}

func (r *SQLRepository) Put(ctx context.Context, c *domain.Code) error {
	_, err := r.db.ExecContext(ctx, r.putSQL, c.SessionID, c.Email, c.CodeHash, c.IssuedAt.UnixMilli(), c.ExpiresAt.UnixMilli())
	return err
}

// Take is a single DELETE ... RETURNING, so the row goes to exactly one caller.
func (r *SQLRepository) Take(ctx context.Context, sessionID string) (*domain.Code, error) {
	c := domain.Code{SessionID: sessionID}
	var issued, expires int64
	err := r.db.QueryRowContext(ctx, r.takeSQL, sessionID).Scan(&c.Email, &c.CodeHash, &issued, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.IssuedAt = time.UnixMilli(issued).UTC()
	c.ExpiresAt = time.UnixMilli(expires).UTC()
	return &c, nil
}

func (r *SQLRepository) DeleteIf(ctx context.Context, sessionID, codeHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.deleteIf, sessionID, codeHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
