package envguard

import (
	"sort"

	"github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/locks"
)

type directiveKind int

const (
	kindSet directiveKind = iota
	kindClear
	kindReads
	kindWrites
)

// Directive is a declarative instruction about one global key, or a
// declaration of independent access to the whole namespace.
type Directive struct {
	kind  directiveKind
	key   string
	value string
}

// Set declares that key holds value for the duration of the invocation.
func Set(key, value string) Directive {
	return Directive{kind: kindSet, key: key, value: value}
}

// Clear declares that key is absent for the duration of the invocation.
func Clear(key string) Directive {
	return Directive{kind: kindClear, key: key}
}

// Reads declares that the invocation reads the namespace without naming
// keys. It joins the guarded set in read mode: concurrent with other
// readers, never with a mutating invocation.
func Reads() Directive {
	return Directive{kind: kindReads}
}

// Writes declares that the invocation mutates the namespace on its own.
// It joins the guarded set in read-write mode without the guard applying
// or restoring anything for it.
func Writes() Directive {
	return Directive{kind: kindWrites}
}

// Plan is the resolved set of directives for one invocation.
type Plan struct {
	byKey  map[string]Directive
	reads  bool
	writes bool
}

// Resolve combines suite-level and test-level directive lists. A test-level
// directive for key K replaces any suite-level directive for K. A Set and a
// Clear for the same key at the same level is a declaration conflict.
func Resolve(suiteLevel, testLevel []Directive) (*Plan, error) {
	p := &Plan{byKey: make(map[string]Directive)}

	if err := p.addLevel(suiteLevel, "suite"); err != nil {
		return nil, err
	}
	if err := p.addLevel(testLevel, "test"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) addLevel(directives []Directive, level string) error {
	seen := make(map[string]directiveKind)
	for _, d := range directives {
		switch d.kind {
		case kindReads:
			p.reads = true
			continue
		case kindWrites:
			p.writes = true
			continue
		}
		if prev, ok := seen[d.key]; ok && prev != d.kind {
			return errors.DirectiveConflict(d.key, level)
		}
		seen[d.key] = d.kind
		// Within a level a repeated directive of the same kind replaces the
		// earlier one; across levels this overwrite is the shadowing rule.
		p.byKey[d.key] = d
	}
	return nil
}

// Keys returns the directive-touched keys in sorted order.
func (p *Plan) Keys() []string {
	keys := make([]string, 0, len(p.byKey))
	for k := range p.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LockMode returns the exclusivity mode this plan needs, and whether it
// needs the lock at all.
func (p *Plan) LockMode() (locks.Mode, bool) {
	if len(p.byKey) > 0 || p.writes {
		return locks.ReadWrite, true
	}
	if p.reads {
		return locks.Read, true
	}
	return locks.Read, false
}
