package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "user-1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Put(ctx, Session{
		UserID:       "user-1",
		AthleteID:    42,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}))

	sess, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(42), sess.AthleteID)
	require.Equal(t, "access-1", sess.AccessToken)
	require.False(t, sess.CreatedAt.IsZero())
}

func TestMemoryRepositoryPutPreservesCreatedAt(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, Session{UserID: "user-1", AccessToken: "access-1"}))
	first, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, repo.Put(ctx, Session{UserID: "user-1", AccessToken: "access-2"}))
	second, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)

	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Equal(t, "access-2", second.AccessToken)
}

func TestMemoryRepositoryRequiresUserID(t *testing.T) {
	repo := NewMemoryRepository()
	require.ErrorIs(t, repo.Put(context.Background(), Session{}), ErrMissingUserID)
}

func TestMemoryRepositoryClear(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, Session{UserID: "user-1", AccessToken: "access-1"}))
	require.NoError(t, repo.Clear(ctx, "user-1"))

	_, err := repo.Get(ctx, "user-1")
	require.ErrorIs(t, err, ErrNotFound)

	// Clearing an absent user is a no-op.
	require.NoError(t, repo.Clear(ctx, "user-2"))
}

func TestMemoryRepositoryIsolatesUsers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, Session{UserID: "user-1", AccessToken: "a"}))
	require.NoError(t, repo.Put(ctx, Session{UserID: "user-2", AccessToken: "b"}))

	one, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	two, err := repo.Get(ctx, "user-2")
	require.NoError(t, err)
	require.NotEqual(t, one.AccessToken, two.AccessToken)
}
