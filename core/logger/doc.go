// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) with console or JSON encoding.
//
// # Scope Awareness
//
// A synchronization run processes several scopes (users, projects, ...).
// The WithScope helper attaches the scope name to the log entry, ensuring
// that all logs related to one scope can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Synchronization started")
//
//	// In a scope runner:
//	l := logger.WithScope(log, "users")
//	l.Error("Create failed", zap.Error(err))
package logger
