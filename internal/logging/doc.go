// Package logging builds the slog loggers used across tunecast.
//
// Two output formats are supported: a human-oriented console format that
// prefixes lines with a component label, and machine-readable JSON. Loggers
// fan out to stdout and the daemon log file. Helper constructors (Error,
// String, WithComponent, NewNop) keep call sites terse and consistent.
package logging
