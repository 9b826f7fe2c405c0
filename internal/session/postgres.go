package session

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for the sessions table, applied by deployment tooling.
const Schema = `CREATE TABLE IF NOT EXISTS sessions (
    user_id       TEXT PRIMARY KEY,
    athlete_id    BIGINT NOT NULL DEFAULT 0,
    access_token  TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    expires_at    BIGINT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository persists sessions in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get implements Repository.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Session, error) {
	const query = `SELECT user_id, athlete_id, access_token, refresh_token, expires_at, created_at, updated_at
        FROM sessions WHERE user_id=$1`

	row := r.pool.QueryRow(ctx, query, userID)

	var sess Session
	if err := row.Scan(&sess.UserID, &sess.AthleteID, &sess.AccessToken, &sess.RefreshToken, &sess.ExpiresAt, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Put implements Repository with upsert semantics. Token refresh is
// idempotent, so last-writer-wins on concurrent updates is acceptable.
func (r *PostgresRepository) Put(ctx context.Context, sess Session) error {
	if strings.TrimSpace(sess.UserID) == "" {
		return ErrMissingUserID
	}

	const query = `INSERT INTO sessions (user_id, athlete_id, access_token, refresh_token, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            athlete_id=EXCLUDED.athlete_id,
            access_token=EXCLUDED.access_token,
            refresh_token=EXCLUDED.refresh_token,
            expires_at=EXCLUDED.expires_at,
            updated_at=now()`

	_, err := r.pool.Exec(ctx, query, sess.UserID, sess.AthleteID, sess.AccessToken, sess.RefreshToken, sess.ExpiresAt)
	return err
}

// Clear implements Repository.
func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
	return err
}
