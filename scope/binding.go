package scope

import (
	"testing"

	"github.com/kbukum/testkit/logger"
)

// Bind creates a scope for the current test and registers its Close with
// t.Cleanup, so teardown runs on every exit path the runner knows about:
// pass, Error, Fatal, timeout abort, or a panic recovered by the runner.
//
// parent may be nil, in which case the scope is a root. Teardown failures
// are reported through t.Errorf; they mark the test failed without masking
// whatever the body already reported.
func Bind(t testing.TB, parent *Scope) *Scope {
	t.Helper()

	var s *Scope
	if parent == nil {
		s = New(t.Name())
	} else {
		var err error
		s, err = parent.Child(t.Name())
		if err != nil {
			t.Fatalf("cannot open scope under %q: %v", parent.Name(), err)
		}
	}

	logger.WithComponent("scope").Debug("scope bound", logger.Fields(
		logger.FieldTest, t.Name(),
		logger.FieldScopeID, s.ID(),
	))

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("scope %q teardown: %v", s.Name(), err)
		}
	})
	return s
}
