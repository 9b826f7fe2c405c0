// Package session stores per-user OAuth credentials behind an explicit
// repository abstraction, so workflows never share process-wide state.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session exists for the user.
var ErrNotFound = errors.New("session not found")

// ErrMissingUserID rejects writes without a user key.
var ErrMissingUserID = errors.New("session user id is required")

// Session holds the OAuth token triple and athlete identity for one user.
type Session struct {
	UserID       string
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository is the capability contract for session storage.
type Repository interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, sess Session) error
	Clear(ctx context.Context, userID string) error
}
