// Package logger builds configured log/slog loggers for the dispatch
// engine, plus domain attribute helpers (UserID, NotificationKey, EventID)
// so log records stay consistently keyed across components.
package logger
