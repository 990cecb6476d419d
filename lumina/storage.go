package lumina

import "sync"

// TokenKey is the key under which the client persists its bearer token in
// the configured TokenStore.
const TokenKey = "lumina.auth.token"

// TokenStore is the key-value persistence collaborator. Implementations
// back it with whatever the host application uses (browser storage, a
// keyring, a file); the client only needs get/set/remove by string key.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// InvalidationFunc is the cross-component notification collaborator: after
// a successful mutation it is called once per affected model name so the
// host's request cache can drop stale entries.
type InvalidationFunc func(model string)

// MemoryTokenStore is the default TokenStore, an in-process map safe for
// concurrent use.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (s *MemoryTokenStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *MemoryTokenStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *MemoryTokenStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
