package services

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	videoIDKey   contextKey = "video_id"
	styleKey     contextKey = "style"
)

// WithSessionID annotates context with the overlay session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the overlay session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithVideoID annotates context with the identifier of the video being played.
func WithVideoID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, videoIDKey, id)
}

// VideoIDFromContext returns the video identifier if present.
func VideoIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(videoIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStyle annotates context with the caption style key in effect.
func WithStyle(ctx context.Context, style string) context.Context {
	if style == "" {
		return ctx
	}
	return context.WithValue(ctx, styleKey, style)
}

// StyleFromContext returns the caption style key if present.
func StyleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(styleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
