package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pressing-admin/pkg/config"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/redis"
)

// ErrDraftNotFound is returned when a draft expired or never existed.
var ErrDraftNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "wizard draft not found")

// DraftStore keeps wizard states between dashboard requests.
type DraftStore interface {
	Save(ctx context.Context, kind, id string, payload []byte) error
	Load(ctx context.Context, kind, id string) ([]byte, error)
	Delete(ctx context.Context, kind, id string) error
}

// NewDraftID returns a fresh draft identifier.
func NewDraftID() string {
	return uuid.NewString()
}

// SaveState persists a machine state under kind/id.
func SaveState[F Form](ctx context.Context, store DraftStore, kind, id string, state State[F]) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding %s draft: %w", kind, err)
	}
	return store.Save(ctx, kind, id, payload)
}

// LoadState reads a persisted state into a state whose form is produced by newForm.
func LoadState[F Form](ctx context.Context, store DraftStore, kind, id string, newForm func() F) (State[F], error) {
	state := State[F]{Form: newForm()}
	payload, err := store.Load(ctx, kind, id)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(payload, &state); err != nil {
		return state, fmt.Errorf("decoding %s draft: %w", kind, err)
	}
	return state, nil
}

type draftKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DraftKey(kind, id string) string
}

// RedisDrafts stores drafts with a sliding TTL so that replicas share them.
type RedisDrafts struct {
	client draftKV
	ttl    time.Duration
}

func NewRedisDrafts(client draftKV, ttl time.Duration) *RedisDrafts {
	return &RedisDrafts{client: client, ttl: ttl}
}

func (r *RedisDrafts) Save(ctx context.Context, kind, id string, payload []byte) error {
	return r.client.Set(ctx, r.client.DraftKey(kind, id), payload, r.ttl)
}

func (r *RedisDrafts) Load(ctx context.Context, kind, id string) ([]byte, error) {
	key := r.client.DraftKey(kind, id)
	value, err := r.client.Get(ctx, key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.client.Touch(ctx, key, r.ttl); err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (r *RedisDrafts) Delete(ctx context.Context, kind, id string) error {
	return r.client.Del(ctx, r.client.DraftKey(kind, id))
}

type memoryDraft struct {
	payload []byte
	expires time.Time
}

// MemoryDrafts keeps drafts in process.
type MemoryDrafts struct {
	mu    sync.Mutex
	items map[string]memoryDraft
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryDrafts(ttl time.Duration) *MemoryDrafts {
	return &MemoryDrafts{items: map[string]memoryDraft{}, ttl: ttl, now: time.Now}
}

func (m *MemoryDrafts) Save(_ context.Context, kind, id string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[kind+":"+id] = memoryDraft{payload: append([]byte(nil), payload...), expires: m.expiry()}
	return nil
}

func (m *MemoryDrafts) Load(_ context.Context, kind, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := kind + ":" + id
	item, ok := m.items[key]
	if !ok || (!item.expires.IsZero() && m.now().After(item.expires)) {
		delete(m.items, key)
		return nil, ErrDraftNotFound
	}
	item.expires = m.expiry()
	m.items[key] = item
	return append([]byte(nil), item.payload...), nil
}

func (m *MemoryDrafts) Delete(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, kind+":"+id)
	return nil
}

func (m *MemoryDrafts) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

// NewDraftStore builds the store selected by configuration. rdb may be nil unless redis is selected.
func NewDraftStore(cfg config.WizardConfig, rdb *redis.Client) (DraftStore, error) {
	switch cfg.DraftStore {
	case config.DraftStoreRedis:
		if rdb == nil {
			return nil, errors.New("redis draft store requires a redis client")
		}
		return NewRedisDrafts(rdb, cfg.DraftTTL), nil
	case config.DraftStoreMemory, "":
		return NewMemoryDrafts(cfg.DraftTTL), nil
	default:
		return nil, fmt.Errorf("unknown draft store %q", cfg.DraftStore)
	}
}
