// Package logging builds the process slog logger and provides typed
// attribute helpers shared across components.
package logging
