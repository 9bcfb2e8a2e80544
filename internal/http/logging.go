package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request scoped logger set by RequestLogger and
// tags it with the handler, the operation and the reservation id in the path.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := make([]any, 0, 6+len(attrs))
	pairs = append(pairs, "handler", handlerName)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if id, ok := ReservationIDFromContext(ctx); ok && !hasAttr(attrs, "reservation_id") {
		pairs = append(pairs, "reservation_id", id)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}

func hasAttr(attrs []any, key string) bool {
	for i := 0; i < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			return true
		}
	}
	return false
}
