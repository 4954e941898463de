package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/config"
	"github.com/angelmondragon/pressing-admin/pkg/redis"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 42,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString([]byte("not-verified-here"))
	require.NoError(t, err)
	return signed
}

func TestSessionSaveTokenClear(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore())

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save(ctx, "opaque-token"))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing twice is a no-op")
	token, _ = s.Token(ctx)
	assert.Empty(t, token)
}

func TestSessionClaims(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s := New(NewMemoryStore(), WithClock(func() time.Time { return now }))

	_, err := s.Claims(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Save(ctx, signedToken(t, now.Add(time.Hour))))
	claims, err := s.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)

	require.NoError(t, s.Save(ctx, "opaque"))
	_, err = s.Claims(ctx)
	require.ErrorIs(t, err, ErrOpaqueToken)
}

func TestSessionTreatsExpiredTokenAsAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, signedToken(t, now.Add(-time.Minute)), 0))

	s := New(store, WithClock(func() time.Time { return now }))
	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.Error(t, s.Save(ctx, signedToken(t, now.Add(-time.Second))))
}

func TestSessionConcurrentClear(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore())
	require.NoError(t, s.Save(ctx, "token"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Clear(ctx)
			_, _ = s.Token(ctx)
		}()
	}
	wg.Wait()

	token, _ := s.Token(ctx)
	assert.Empty(t, token)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(ctx, "file-token", 0))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = New(NewFileStore(path)).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "file-token", token)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRedisStoreUsesNamespacedKey(t *testing.T) {
	ctx := context.Background()
	kv := &fakeKV{data: map[string]string{}}
	store := NewRedisStore(kv, "dashboard")

	require.NoError(t, store.Save(ctx, "redis-token", time.Minute))
	assert.Equal(t, "redis-token", kv.data["pressing:session:dashboard"])
	assert.Equal(t, time.Minute, kv.ttl)

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "redis-token", token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestNewStoreSelection(t *testing.T) {
	store, err := NewStore(config.SessionConfig{Store: config.SessionStoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(config.SessionConfig{Store: config.SessionStoreFile, FilePath: "x.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = NewStore(config.SessionConfig{Store: config.SessionStoreRedis}, nil)
	require.Error(t, err)

	_, err = NewStore(config.SessionConfig{Store: "cookie"}, nil)
	require.Error(t, err)
}

type fakeKV struct {
	data map[string]string
	ttl  time.Duration
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return value, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttl = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeKV) SessionKey(name string) string {
	return "pressing:session:" + name
}
