package envguard

import (
	"os"
	"sync"
)

// Store abstracts the mutable global namespace the guard brackets. The
// process environment is the default; anything key-value shaped with the
// same semantics can stand in, which also keeps the guard testable without
// touching the real environment.
type Store interface {
	// Lookup returns the current value for key and whether it is present.
	Lookup(key string) (string, bool)
	// Set assigns key to value.
	Set(key, value string) error
	// Unset removes key. Removing an absent key is a no-op.
	Unset(key string) error
}

// OSStore is the process environment.
type OSStore struct{}

func (OSStore) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (OSStore) Set(key, value string) error      { return os.Setenv(key, value) }
func (OSStore) Unset(key string) error           { return os.Unsetenv(key) }

// MapStore is an in-memory Store, safe for concurrent use.
type MapStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMapStore creates a MapStore seeded with the given entries.
func NewMapStore(seed map[string]string) *MapStore {
	m := make(map[string]string, len(seed))
	for k, v := range seed {
		m[k] = v
	}
	return &MapStore{m: m}
}

func (s *MapStore) Lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MapStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MapStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Snapshot returns a copy of the store's current contents.
func (s *MapStore) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}
