// Package log provides a logging abstraction for rc522assist components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. A zerolog adapter and a no-op logger (the library
// default) are provided.
//
// # Usage
//
// Build a zerolog adapter writing human readable lines to stderr:
//
//	logger, err := log.New(os.Stderr, log.FormatConsole, "debug")
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
