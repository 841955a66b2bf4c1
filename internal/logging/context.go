package logging

import (
	"context"
	"log/slog"

	"subsyncarr/internal/services"
)

// Structured keys shared across packages. The console handler prints
// component as the line prefix and puts run_id and engine first.
const (
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldEngine        = "engine"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
)

// WithContext returns logger tagged with the run id, engine and request id
// carried by ctx, when present.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if engine, ok := services.EngineFromContext(ctx); ok {
		args = append(args, slog.String(FieldEngine, engine))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldCorrelationID, rid))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
