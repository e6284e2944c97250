package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) GetDel(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	delete(m.data, key)
	return val, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(sessionID string) string {
	return "sess:" + sessionID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: 7 * 24 * time.Hour}
}

func TestManagerOpenAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	sid, err := manager.Open(ctx, userID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.data[store.SessionKey(sid)] != userID.String() {
		t.Fatalf("expected session to map to user")
	}
	if store.ttls[store.SessionKey(sid)] != 7*24*time.Hour {
		t.Fatalf("expected refresh ttl on session")
	}

	if _, err := manager.Rotate(ctx, sid, uuid.New()); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected invalid session for another user, got %v", err)
	}

	sid, _ = manager.Open(ctx, userID)
	next, err := manager.Rotate(ctx, sid, userID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if next == sid {
		t.Fatalf("rotation must issue a new session id")
	}
	if _, exists := store.data[store.SessionKey(sid)]; exists {
		t.Fatalf("old session left behind")
	}
	if _, err := manager.Rotate(ctx, sid, userID); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("replayed rotation should fail, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	sid, _ := manager.Open(ctx, uuid.New())
	ok, err := manager.HasSession(ctx, sid)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, sid); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, sid)
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
	if ok, _ := manager.HasSession(ctx, ""); ok {
		t.Fatalf("empty id never has a session")
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{}); err == nil {
		t.Fatal("expected error without redis client")
	}
}
