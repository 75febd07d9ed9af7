// Package diag keeps a bounded rolling buffer of recent log records for the
// diagnostics endpoint. Entries never reach end users in production.
package diag

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCapacity bounds the rolling buffer.
const DefaultCapacity = 20

// Entry is one captured log record.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Source  string    `json:"source,omitempty"`
}

// Buffer holds the most recent entries, oldest evicted first.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

// NewBuffer creates a rolling buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append records an entry, evicting the oldest one at capacity.
func (b *Buffer) Append(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry)
	if len(b.entries) > b.capacity {
		b.entries = b.entries[len(b.entries)-b.capacity:]
	}
}

// Snapshot returns a copy of the buffered entries, oldest first.
func (b *Buffer) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Handler is an slog.Handler that forwards every record to an inner handler
// and captures warn-and-above records into a Buffer.
type Handler struct {
	inner  slog.Handler
	buffer *Buffer
	source string
}

// NewHandler wraps inner with capture into buffer.
func NewHandler(inner slog.Handler, buffer *Buffer) *Handler {
	return &Handler{inner: inner, buffer: buffer}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		h.buffer.Append(Entry{
			Time:    record.Time,
			Level:   record.Level.String(),
			Message: record.Message,
			Source:  h.source,
		})
	}
	return h.inner.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), buffer: h.buffer, source: h.source}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), buffer: h.buffer, source: name}
}
