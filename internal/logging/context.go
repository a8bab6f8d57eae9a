package logging

import (
	"context"
	"log/slog"

	"danmaku/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID identifies one overlay run.
	FieldSessionID = "session_id"
	// FieldVideoID identifies the video the overlay is attached to.
	FieldVideoID = "video_id"
	// FieldStyle is the active translation style key.
	FieldStyle = "style"
	// FieldLane is a track lane index.
	FieldLane = "lane"
	// FieldFragmentID is a danmaku fragment identifier.
	FieldFragmentID = "fragment_id"
	// FieldEventType classifies WARN and ERROR records for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, SessionID(id))
	}
	if id, ok := services.VideoIDFromContext(ctx); ok {
		fields = append(fields, VideoID(id))
	}
	if style, ok := services.StyleFromContext(ctx); ok {
		fields = append(fields, Style(style))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
