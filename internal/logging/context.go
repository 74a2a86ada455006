package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	videoKey contextKey = iota
	streamKey
	runIDKey
)

// WithVideo tags ctx with the video being processed.
func WithVideo(ctx context.Context, video string) context.Context {
	return context.WithValue(ctx, videoKey, video)
}

// WithStream tags ctx with the feature stream being processed.
func WithStream(ctx context.Context, stream string) context.Context {
	return context.WithValue(ctx, streamKey, stream)
}

// WithRunID tags ctx with the detection run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier stored on ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts the standardized attributes stored on ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if video, ok := ctx.Value(videoKey).(string); ok && video != "" {
		fields = append(fields, slog.String(FieldVideo, video))
	}
	if stream, ok := ctx.Value(streamKey).(string); ok && stream != "" {
		fields = append(fields, slog.String(FieldStream, stream))
	}
	return fields
}

// WithContext returns logger augmented with the fields stored on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
