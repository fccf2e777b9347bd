// Package log provides a slog handler that masks patient identifiers before
// records reach the underlying handler. Analysis warnings routinely mention
// the patient a degenerate observation belongs to; those identifiers must
// not end up in shared terminal scrollback or CI logs.
package log
