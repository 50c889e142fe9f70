package auth

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockIdentityProvider struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*IdentityRecord
	byLogin map[string]string
	byEmail map[string]string
	byPhone map[string]string // percent-encoded phone -> identity id

	createErr error
}

func newMockIdentityProvider() *mockIdentityProvider {
	return &mockIdentityProvider{
		records: map[string]*IdentityRecord{},
		byLogin: map[string]string{},
		byEmail: map[string]string{},
		byPhone: map[string]string{},
	}
}

func (m *mockIdentityProvider) add(rec IdentityRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := rec
	m.records[rec.ID] = &stored
	m.byLogin[rec.Login] = rec.ID
	if rec.Email != "" {
		m.byEmail[rec.Email] = rec.ID
	}
	if rec.Phone != "" {
		m.byPhone[encodePhoneForLookup(rec.Phone)] = rec.ID
	}
}

func (m *mockIdentityProvider) get(id string) IdentityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return IdentityRecord{}
	}
	return *rec
}

func (m *mockIdentityProvider) GetByID(_ context.Context, id string) (IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return IdentityRecord{}, ErrIdentityNotFound
	}
	return *rec, nil
}

func (m *mockIdentityProvider) GetByLogin(_ context.Context, login string) (IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLogin[login]
	if !ok {
		return IdentityRecord{}, ErrIdentityNotFound
	}
	return *m.records[id], nil
}

func (m *mockIdentityProvider) GetByEmail(_ context.Context, email string) (IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return IdentityRecord{}, ErrIdentityNotFound
	}
	return *m.records[id], nil
}

func (m *mockIdentityProvider) GetByPhone(_ context.Context, encodedPhone string) (IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byPhone[encodedPhone]
	if !ok {
		return IdentityRecord{}, ErrIdentityNotFound
	}
	return *m.records[id], nil
}

func (m *mockIdentityProvider) Create(_ context.Context, input CreateIdentityInput) (IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return IdentityRecord{}, m.createErr
	}

	m.nextID++
	rec := &IdentityRecord{
		ID:           "u" + strconv.Itoa(m.nextID),
		Login:        input.Login,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
	}
	m.records[rec.ID] = rec
	m.byLogin[rec.Login] = rec.ID
	return *rec, nil
}

func (m *mockIdentityProvider) UpdatePasswordHash(_ context.Context, id string, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.PasswordHash = newHash
	return nil
}

func (m *mockIdentityProvider) SetAuthenticatorSecret(_ context.Context, id string, secret []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.AuthenticatorSecret = append([]byte(nil), secret...)
	return nil
}

func (m *mockIdentityProvider) SetEmail(_ context.Context, id string, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.Email = email
	m.byEmail[email] = id
	return nil
}

func (m *mockIdentityProvider) SetPhone(_ context.Context, id string, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.Phone = phone
	m.byPhone[encodePhoneForLookup(phone)] = id
	return nil
}

func engineTestConfig() Config {
	cfg := defaultConfig()
	cfg.Token.Secret = bytes.Repeat([]byte{0x42}, 32)
	// Cheap hashing keeps the suite fast; production defaults stay higher.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *mockIdentityProvider, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := newMockIdentityProvider()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityProvider(provider).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, provider, func() {
		engine.Close()
		_ = client.Close()
		mr.Close()
	}
}

func newTestEngineWithSink(t *testing.T, cfg Config, sink AuditSink) (*Engine, *mockIdentityProvider, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := newMockIdentityProvider()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityProvider(provider).
		WithAuditSink(sink).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, provider, func() {
		engine.Close()
		_ = client.Close()
		mr.Close()
	}
}

// seedAccount registers an account directly through the provider with a
// real hash so credential sign-in works.
func seedAccount(t *testing.T, engine *Engine, provider *mockIdentityProvider, id, login, plaintext string, role Role) {
	t.Helper()

	hash, err := engine.hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("seed hash failed: %v", err)
	}
	provider.add(IdentityRecord{ID: id, Login: login, PasswordHash: hash, Role: role})
}

func codeForSecret(t *testing.T, cfg TOTPConfig, secret []byte, offset int64) string {
	t.Helper()

	counter := time.Now().Unix()/int64(cfg.Period) + offset
	code, err := hotpCode(secret, counter, cfg.Digits, cfg.Algorithm)
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}
	return code
}

// wrongCodeForSecret returns a syntactically valid code that does not match
// the current window (an offset far outside the configured skew).
func wrongCodeForSecret(t *testing.T, cfg TOTPConfig, secret []byte) string {
	t.Helper()

	current := codeForSecret(t, cfg, secret, 0)
	for off := int64(50); off < 60; off++ {
		candidate := codeForSecret(t, cfg, secret, off)
		if candidate != current {
			return candidate
		}
	}
	t.Fatal("could not derive a mismatching code")
	return ""
}

func mustStartRegistration(t *testing.T, engine *Engine, login string) string {
	t.Helper()

	flowID, err := engine.StartRegistration(context.Background(), RegistrationRequest{
		Login:    login,
		Password: "correct-password-123",
		Role:     RoleStudent,
	})
	if err != nil {
		t.Fatalf("StartRegistration failed: %v", err)
	}
	return flowID
}

func fmtSessions(infos []SessionInfo) string {
	out := ""
	for _, info := range infos {
		out += fmt.Sprintf("%s enabled=%v; ", info.SessionID, info.Enabled)
	}
	return out
}
