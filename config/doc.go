// Package config loads testkit's own configuration.
//
// Suites rarely need this; the defaults (process environment store, lock
// namespace "testkit/env", warn-level logging) are right for almost
// everyone. CI setups that want debug logging or a memory-backed store can
// drop a testkit.yml next to the package under test or export TESTKIT_*
// variables:
//
//	cfg, err := config.Load()
//	guard := cfg.Guard()
package config
