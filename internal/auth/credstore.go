package auth

import (
	"log/slog"
	"sync"

	"github.com/zalando/go-keyring"
)

// CredentialStore is the opaque secret store sessions are persisted in.
// Set and Delete swallow failures (implementations log them); Get reports
// absence and failure alike as ok=false.
type CredentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// KeyringStore stores secrets in the operating system keyring under a
// fixed service name.
type KeyringStore struct {
	service string
	logger  *slog.Logger
}

// NewKeyringStore creates a keyring-backed credential store.
func NewKeyringStore(service string, logger *slog.Logger) *KeyringStore {
	return &KeyringStore{service: service, logger: logger}
}

func (k *KeyringStore) Get(key string) (string, bool) {
	val, err := keyring.Get(k.service, key)
	if err != nil {
		if err != keyring.ErrNotFound {
			k.logger.Warn("reading secret", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (k *KeyringStore) Set(key, value string) {
	if err := keyring.Set(k.service, key, value); err != nil {
		k.logger.Warn("storing secret", "key", key, "error", err)
	}
}

func (k *KeyringStore) Delete(key string) {
	if err := keyring.Delete(k.service, key); err != nil && err != keyring.ErrNotFound {
		k.logger.Warn("deleting secret", "key", key, "error", err)
	}
}

// MemoryStore is an in-memory credential store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string]string

	// FailReads makes every Get report absence, simulating a broken
	// underlying store.
	FailReads bool
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return "", false
	}
	v, ok := m.secrets[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = value
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, key)
}
