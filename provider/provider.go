package provider

import (
	"fmt"
	"testing"

	"github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/logger"
	"github.com/kbukum/testkit/scope"
)

// Factory creates a resource for a scope. The returned teardown (which may
// be nil) is registered against the scope's closing event before any caller
// sees the value.
type Factory[T any] func(s *scope.Scope) (T, scope.Teardown, error)

// Provider resolves a scoped singleton of type T.
type Provider[T any] struct {
	capability string
	key        string
	factory    Factory[T]
}

// New declares a provider. capability is the activation name a scope must
// opt in to; key identifies the resource in the scope's store.
func New[T any](capability, key string, factory Factory[T]) *Provider[T] {
	return &Provider[T]{capability: capability, key: key, factory: factory}
}

// Capability returns the activation name this provider requires.
func (p *Provider[T]) Capability() string { return p.capability }

// Key returns the store key this provider resolves.
func (p *Provider[T]) Key() string { return p.key }

// Get resolves the resource from s, creating it on first access. The lookup
// targets exactly the scope the caller supplies; choosing a suite scope
// shares the resource across its tests, a test scope keeps it private.
func (p *Provider[T]) Get(s *scope.Scope) (T, error) {
	var zero T

	if !s.IsActive(p.capability) {
		return zero, errors.ActivationRequired(p.capability)
	}

	v, err := s.GetOrCreate(p.key, func() (interface{}, error) {
		value, teardown, err := p.factory(s)
		if err != nil {
			return nil, errors.FactoryFailed(p.key, err)
		}
		if teardown != nil {
			if err := s.OnClose(teardown); err != nil {
				return nil, err
			}
		}
		logger.WithComponent("provider").Debug("resource created", logger.Fields(
			logger.FieldCapability, p.capability,
			logger.FieldKey, p.key,
			logger.FieldScope, s.Name(),
		))
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, errors.InvalidInput(p.key,
			fmt.Sprintf("store entry %q holds %T, not the provider's type", p.key, v))
	}
	return typed, nil
}

// Peek returns the resource if this scope or an ancestor already holds
// one, without invoking the factory. A miss is reported as a NOT_FOUND
// error rather than creating the resource.
func (p *Provider[T]) Peek(s *scope.Scope) (T, error) {
	var zero T

	v, ok := s.Find(p.key)
	if !ok {
		return zero, errors.NotFound(p.key)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.InvalidInput(p.key,
			fmt.Sprintf("store entry %q holds %T, not the provider's type", p.key, v))
	}
	return typed, nil
}

// MustGet resolves the resource and fails the test on any error.
func (p *Provider[T]) MustGet(t testing.TB, s *scope.Scope) T {
	t.Helper()
	v, err := p.Get(s)
	if err != nil {
		t.Fatalf("resolve %s/%s: %v", p.capability, p.key, err)
	}
	return v
}
