// Package logger provides structured logging for testkit using zerolog.
//
// Test infrastructure should mostly stay quiet: the default level is warn
// so passing suites produce no output. Teardown failures, platform mutation
// errors and lock diagnostics go through the global logger, which suites
// can reconfigure or silence via Init.
//
// # Configuration
//
//	logging:
//	  level: "warn"
//	  format: "console"
//
// # Usage
//
//	log := logger.WithComponent("envguard")
//	log.Warn("restore failed", logger.Fields(logger.FieldKey, "HOME"))
package logger
