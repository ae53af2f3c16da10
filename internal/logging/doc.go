// Package logging builds the slog loggers used across warble.
//
// Two output formats are supported: a human-oriented console format and JSON.
// Helpers provide typed attribute constructors, standardized field keys, and
// context-derived fields (job ID, stage, correlation ID) so every component
// logs the same vocabulary.
package logging
