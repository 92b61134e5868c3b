// Package errors provides unified error handling for testkit.
//
// It implements structured error types with machine-readable codes so that
// infrastructure failures (activation refusals, directive conflicts,
// platform mutation errors, teardown failures) stay distinguishable from
// ordinary test-body failures.
//
//	err := errors.ActivationRequired("playwright")
//	if errors.IsSetup(err) { ... }
package errors
