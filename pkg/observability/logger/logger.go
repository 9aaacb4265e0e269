package logger

// Logger is the structured logging contract used throughout the storage layer.
// All log methods accept a message followed by alternating key-value pairs.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info-level message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning-level message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error-level message with optional key-value pairs
	Error(msg string, args ...any)

	// With creates a child logger whose entries always carry the given
	// key-value pairs
	With(args ...any) Logger
}

// NopLogger discards all log output. Useful as a default in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// With returns the receiver unchanged.
func (l NopLogger) With(...any) Logger { return l }
