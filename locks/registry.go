package locks

import (
	"sync"

	"github.com/kbukum/testkit/logger"
)

// Mode selects how a named lock is acquired.
type Mode int

const (
	// Read is for invocations that only observe the guarded namespace.
	// Readers may hold the lock concurrently with each other.
	Read Mode = iota
	// ReadWrite is for invocations that mutate the guarded namespace.
	// A writer excludes all readers and all other writers.
	ReadWrite
)

// String returns the mode name for diagnostics.
func (m Mode) String() string {
	if m == Read {
		return "read"
	}
	return "read_write"
}

// Release returns a lock acquisition. It is single-use; extra calls are no-ops.
type Release func()

// Lock is a named lock enforcing reader/writer exclusion across test
// invocations within one process.
type Lock struct {
	name string
	mu   sync.RWMutex
}

// Name returns the lock's namespace string.
func (l *Lock) Name() string { return l.name }

// Acquire blocks until the lock is held in the requested mode and returns
// the matching release function.
func (l *Lock) Acquire(mode Mode) Release {
	log := logger.WithComponent("locks")
	log.Debug("acquiring lock", logger.Fields(logger.FieldLock, l.name, logger.FieldMode, mode.String()))

	var once sync.Once
	if mode == Read {
		l.mu.RLock()
		return func() {
			once.Do(l.mu.RUnlock)
		}
	}
	l.mu.Lock()
	return func() {
		once.Do(l.mu.Unlock)
	}
}

// Registry hands out named locks, creating each name lazily on first use.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*Lock
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*Lock)}
}

// Get returns the lock for name, creating it if needed. All callers asking
// for the same name observe the same lock.
func (r *Registry) Get(name string) *Lock {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[name]; ok {
		return l
	}
	l := &Lock{name: name}
	r.locks[name] = l
	return l
}

// --- Default registry ---

var defaultRegistry = NewRegistry()

// Default returns the process-wide lock registry.
func Default() *Registry { return defaultRegistry }

// Acquire acquires the named lock from the default registry.
func Acquire(name string, mode Mode) Release {
	return defaultRegistry.Get(name).Acquire(mode)
}
