package scope

import (
	stderrors "errors"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/logger"
)

// Teardown is a cleanup callback registered against a scope's closing event.
// It is invoked exactly once, when the owning scope closes.
type Teardown func() error

// Factory produces a resource on first access within a scope.
type Factory func() (interface{}, error)

// entry is a stored value with its own lock so racing GetOrCreate callers
// for one key serialize without blocking the rest of the store.
type entry struct {
	mu    sync.Mutex
	value interface{}
	done  bool
}

// Scope is a hierarchical unit of test execution with a resource store and
// a closing event.
type Scope struct {
	id     string
	name   string
	parent *Scope

	mu        sync.Mutex
	store     map[string]*entry
	teardowns []Teardown
	children  []*Scope
	active    map[string]bool
	closed    bool
}

// New creates a root scope.
func New(name string) *Scope {
	return &Scope{
		id:     uuid.New().String(),
		name:   name,
		store:  make(map[string]*entry),
		active: make(map[string]bool),
	}
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() string { return s.id }

// Name returns the scope's name.
func (s *Scope) Name() string { return s.name }

// Parent returns the enclosing scope, or nil for a root.
func (s *Scope) Parent() *Scope { return s.parent }

// Child creates a nested scope. Closing the parent closes any children that
// are still open, children first.
func (s *Scope) Child(name string) (*Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.ScopeClosed(s.name)
	}

	c := New(name)
	c.parent = s
	s.children = append(s.children, c)
	return c, nil
}

// Activate opts the scope in to a named capability. Descendants inherit the
// activation.
func (s *Scope) Activate(capability string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[capability] = true
}

// IsActive reports whether this scope or any ancestor activated capability.
func (s *Scope) IsActive(capability string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		ok := cur.active[capability]
		cur.mu.Unlock()
		if ok {
			return true
		}
	}
	return false
}

// Put stores a value under key in this scope, shadowing any entry an
// ancestor holds for the same key.
func (s *Scope) Put(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ScopeClosed(s.name)
	}
	s.store[key] = &entry{value: value, done: true}
	return nil
}

// Lookup returns the value stored under key in exactly this scope.
// It never consults ancestors.
func (s *Scope) Lookup(key string) (interface{}, bool) {
	s.mu.Lock()
	e, ok := s.store[key]
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.done {
		return nil, false
	}
	return e.value, true
}

// Find returns the value for key from this scope or the nearest ancestor
// holding one.
func (s *Scope) Find(key string) (interface{}, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.Lookup(key); ok {
			return v, true
		}
	}
	return nil, false
}

// GetOrCreate returns the value stored under key, invoking factory exactly
// once to create it if absent. Racing callers for the same key all observe
// the single value the winning factory produced. A factory error is
// returned to the caller and leaves no entry behind, so a later call may
// retry.
func (s *Scope) GetOrCreate(key string, factory Factory) (interface{}, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, errors.ScopeClosed(s.name)
		}
		e, ok := s.store[key]
		if !ok {
			e = &entry{}
			s.store[key] = e
		}
		s.mu.Unlock()

		e.mu.Lock()
		if e.done {
			value := e.value
			e.mu.Unlock()
			return value, nil
		}

		// While this caller waited for the entry lock, the entry may have
		// been detached from the store: a losing factory deletes it, and
		// Put replaces it. Filling a detached entry would hand out a value
		// the store never holds, so go back through the store instead.
		s.mu.Lock()
		detached := s.store[key] != e
		s.mu.Unlock()
		if detached {
			e.mu.Unlock()
			continue
		}

		value, err := factory()
		if err != nil {
			s.mu.Lock()
			if s.store[key] == e {
				delete(s.store, key)
			}
			s.mu.Unlock()
			e.mu.Unlock()
			return nil, err
		}

		e.value = value
		e.done = true
		// A Put racing with the factory may have replaced the entry;
		// committing wins so the returned value is the stored one.
		s.mu.Lock()
		if s.store[key] != e {
			s.store[key] = e
		}
		s.mu.Unlock()
		e.mu.Unlock()
		return value, nil
	}
}

// OnClose registers a teardown callback. Callbacks run in reverse
// registration order when the scope closes.
func (s *Scope) OnClose(fn Teardown) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ScopeClosed(s.name)
	}
	s.teardowns = append(s.teardowns, fn)
	return nil
}

// Close fires the scope's closing event: open children close first, then
// this scope's teardowns run LIFO. Every teardown runs even when earlier
// ones fail; failures are logged and aggregated into the returned error.
// Close is idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	children := s.children
	teardowns := s.teardowns
	s.children = nil
	s.teardowns = nil
	s.mu.Unlock()

	log := logger.WithComponent("scope")
	var errs []error

	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for i := len(teardowns) - 1; i >= 0; i-- {
		if err := teardowns[i](); err != nil {
			te := errors.TeardownFailed(s.name, err)
			log.Warn("teardown failed", logger.Fields(
				logger.FieldScope, s.name,
				logger.FieldScopeID, s.id,
				logger.FieldError, err.Error(),
			))
			errs = append(errs, te)
		}
	}

	return stderrors.Join(errs...)
}

// Closed reports whether the scope has been closed.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
