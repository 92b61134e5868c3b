package envguard

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/locks"
	"github.com/kbukum/testkit/logger"
)

// DefaultLockNamespace names the exclusivity lock all environment-guarded
// invocations share unless configured otherwise.
const DefaultLockNamespace = "testkit/env"

// Guard brackets test bodies with snapshot, apply, restore over a Store,
// under a named exclusivity lock.
type Guard struct {
	store Store
	lock  *locks.Lock
	log   *logger.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithStore replaces the process environment with another Store.
func WithStore(s Store) Option {
	return func(g *Guard) { g.store = s }
}

// WithLock replaces the default exclusivity lock.
func WithLock(l *locks.Lock) Option {
	return func(g *Guard) { g.lock = l }
}

// NewGuard creates a guard over the process environment using the default
// lock namespace, unless options say otherwise.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		store: OSStore{},
		lock:  locks.Default().Get(DefaultLockNamespace),
		log:   logger.WithComponent("envguard"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var (
	defaultGuard     *Guard
	defaultGuardOnce sync.Once
)

// Default returns the process-wide guard over the real environment.
func Default() *Guard {
	defaultGuardOnce.Do(func() {
		defaultGuard = NewGuard()
	})
	return defaultGuard
}

// Run executes body inside the full guard bracket:
// acquire → snapshot → apply → body → restore → release.
// Restore and release happen on every exit path, including a panicking
// body. Restore failures are joined onto the returned error rather than
// replacing the body's outcome.
func (g *Guard) Run(plan *Plan, body func() error) (err error) {
	if plan == nil {
		return body()
	}

	if mode, needed := plan.LockMode(); needed {
		release := g.lock.Acquire(mode)
		defer release()
	}

	keys := plan.Keys()
	if len(keys) == 0 {
		return body()
	}

	snap := capture(g.store, keys)
	if err := g.apply(plan, keys); err != nil {
		// Put back whatever was already snapshotted before surfacing the
		// setup failure.
		if rerr := restore(g.store, snap); rerr != nil {
			err = stderrors.Join(err, rerr)
		}
		return err
	}

	defer func() {
		if rerr := restore(g.store, snap); rerr != nil {
			g.log.Error("environment restore failed", logger.ErrorFields("restore", rerr))
			err = stderrors.Join(err, rerr)
		}
	}()

	return body()
}

// apply materializes each directive against the store in sorted key order.
func (g *Guard) apply(plan *Plan, keys []string) error {
	for _, key := range keys {
		d := plan.byKey[key]
		var err error
		switch d.kind {
		case kindSet:
			err = g.store.Set(key, d.value)
		case kindClear:
			// Clearing an absent key is a no-op at the store level; the
			// snapshot already recorded it as absent.
			err = g.store.Unset(key)
		}
		if err != nil {
			op := "set"
			if d.kind == kindClear {
				op = "clear"
			}
			return errors.PlatformMutation(op, key, err)
		}
	}
	return nil
}

// Suite carries suite-level directives so each test only adds its own.
type Suite struct {
	guard      *Guard
	directives []Directive
}

// Suite binds suite-level directives to the guard. Tests call Wrap with
// their test-level directives; test-level wins per key.
func (g *Guard) Suite(directives ...Directive) *Suite {
	return &Suite{guard: g, directives: directives}
}

// Wrap guards the calling test: it resolves directives, acquires the lock,
// snapshots and applies before returning, and registers restore and release
// with t.Cleanup so they run however the test exits. Declaration conflicts
// and platform errors fail the test before its body observes anything.
func (s *Suite) Wrap(t testing.TB, testLevel ...Directive) {
	t.Helper()

	plan, err := Resolve(s.directives, testLevel)
	if err != nil {
		t.Fatalf("envguard: %v", err)
	}

	g := s.guard
	if mode, needed := plan.LockMode(); needed {
		release := g.lock.Acquire(mode)
		t.Cleanup(release)
	}

	keys := plan.Keys()
	if len(keys) == 0 {
		return
	}

	snap := capture(g.store, keys)
	t.Cleanup(func() {
		if rerr := restore(g.store, snap); rerr != nil {
			t.Errorf("envguard restore: %v", rerr)
		}
	})

	if err := g.apply(plan, keys); err != nil {
		t.Fatalf("envguard: %v", err)
	}
}

// Wrap guards a test with only test-level directives on the default guard.
func Wrap(t testing.TB, directives ...Directive) {
	t.Helper()
	Default().Suite().Wrap(t, directives...)
}
