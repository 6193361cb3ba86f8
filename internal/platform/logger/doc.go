// Package logger configures the application's structured logging (log/slog
// with a JSON handler) and provides helpers for carrying a request-scoped
// logger through a context.Context.
package logger
