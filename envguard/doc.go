// Package envguard coordinates temporary mutation of process-wide key-value
// state (by default the environment) across parallel tests.
//
// A test declares directives — Set, Clear — at suite and test level. Before
// the body runs the guard acquires a named exclusivity lock, snapshots the
// prior value of every directive-touched key, and applies the directives.
// After the body it restores the snapshot, whatever the outcome, and
// releases the lock. Tests that declare nothing keep running fully
// parallel; tests that only read the namespace declare Reads() and share
// the lock with each other.
//
//	suite := envguard.Default().Suite(envguard.Clear("AWS_PROFILE"))
//
//	func TestRegionOverride(t *testing.T) {
//	    suite.Wrap(t, envguard.Set("AWS_REGION", "eu-west-1"))
//	    // body sees AWS_REGION=eu-west-1 and no AWS_PROFILE;
//	    // both are back to their prior values when the test ends.
//	}
//
// Restoration is directive-scoped: keys the body itself mutated but never
// declared are left as the body left them.
package envguard
