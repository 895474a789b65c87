package validator

import "log"

// Logger is the seam the validator sends its one-shot log events
// through: the schematron coverage warning emitted once in New, and the
// truncation notice emitted once per Validate call that hits its
// max_errors cap. The teacher carries no structured logger of its own
// and favors returning errors over logging; this interface exists only
// so a caller can route these two events into slog or another
// structured logger instead of the standard library's log package.
type Logger interface {
	Printf(format string, args ...any)
}

// stdLogger is the default Logger, backed by the standard library's
// log package.
type stdLogger struct{}

func (stdLogger) Printf(format string, args ...any) { log.Printf(format, args...) }

// NopLogger discards every message. Useful for tests and for callers
// who have no interest in the validator's two log events.
type NopLogger struct{}

func (NopLogger) Printf(string, ...any) {}
