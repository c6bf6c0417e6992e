package simplecms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) FileCreated(ctx context.Context, file *FileRecord) error { return nil }
func (n *NoopEventSink) FileUpdated(ctx context.Context, file *FileRecord) error { return nil }
func (n *NoopEventSink) FileDeleted(ctx context.Context, fileID uuid.UUID) error { return nil }

// LoggingEventSink is an event sink that logs events but takes no other action
// Useful for development and debugging
type LoggingEventSink struct {
	log *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(log *slog.Logger) EventSink {
	return &LoggingEventSink{log: log}
}

func (l *LoggingEventSink) FileCreated(ctx context.Context, file *FileRecord) error {
	l.log.InfoContext(ctx, "file created", slog.String("item", file.Key()), slog.String("id", file.ID.String()))
	return nil
}

func (l *LoggingEventSink) FileUpdated(ctx context.Context, file *FileRecord) error {
	l.log.InfoContext(ctx, "file updated", slog.String("item", file.Key()), slog.String("id", file.ID.String()))
	return nil
}

func (l *LoggingEventSink) FileDeleted(ctx context.Context, fileID uuid.UUID) error {
	l.log.InfoContext(ctx, "file deleted", slog.String("id", fileID.String()))
	return nil
}
