package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T) *SessionRecord {
	t.Helper()
	s, err := questionnaire.Assemble(testutil.ExampleCatalog(t), "", 42)
	require.NoError(t, err)
	s.Subject = "Taro"
	return &SessionRecord{Session: s}
}

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisSessionRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionRepo(client, ttl), mr
}

// sessionRepoContract runs the behavior every SessionRepo must share.
func sessionRepoContract(t *testing.T, repo SessionRepo) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.Get(ctx, rec.Session.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Session.ID, got.Session.ID)
		assert.Equal(t, "Taro", got.Session.Subject)
		assert.Equal(t, rec.Session.Items, got.Session.Items)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.Get(ctx, rec.Session.ID)
		require.NoError(t, err)
		require.NoError(t, got.Session.Answer(got.Session.Items[0].StatementID, 5))

		again, err := repo.Get(ctx, rec.Session.ID)
		require.NoError(t, err)
		assert.Empty(t, again.Session.Answers)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, repo.Save(ctx, rec))
		require.NoError(t, repo.Delete(ctx, rec.Session.ID))

		_, err := repo.Get(ctx, rec.Session.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects record without id", func(t *testing.T) {
		assert.Error(t, repo.Save(ctx, &SessionRecord{}))
	})
}

func TestMemorySessionRepo(t *testing.T) {
	sessionRepoContract(t, NewMemorySessionRepo(16, time.Hour))
}

func TestRedisSessionRepo(t *testing.T) {
	repo, _ := newRedisRepo(t, time.Hour)
	sessionRepoContract(t, repo)
}

func TestMemorySessionRepo_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo(2, time.Hour)

	first, second, third := newRecord(t), newRecord(t), newRecord(t)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, third))

	assert.Equal(t, 2, repo.Len())
	_, err := repo.Get(ctx, first.Session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionRepo_Expires(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo(4, 20*time.Millisecond)

	rec := newRecord(t)
	require.NoError(t, repo.Save(ctx, rec))
	time.Sleep(60 * time.Millisecond)

	_, err := repo.Get(ctx, rec.Session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSessionRepo_TTL(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 10*time.Minute)

	rec := newRecord(t)
	require.NoError(t, repo.Save(ctx, rec))
	assert.Equal(t, 10*time.Minute, mr.TTL(sessionKeyPrefix+rec.Session.ID))

	mr.FastForward(11 * time.Minute)
	_, err := repo.Get(ctx, rec.Session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSessionRepo_Ping(t *testing.T) {
	repo, mr := newRedisRepo(t, time.Minute)
	require.NoError(t, repo.Ping(context.Background()))

	mr.Close()
	assert.Error(t, repo.Ping(context.Background()))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient("not-a-url")
	assert.Error(t, err)
}
