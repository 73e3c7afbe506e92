// Package logging provides structured logging for the node.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Optional copy of warnings and errors to a persistent Sink
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger = logger.WithSink(journal, slog.LevelWarn)
//	logger.Warn("switch trigger rate exceeded", "triggers", 11)
//
// Never log broker passwords or tokens.
package logging
