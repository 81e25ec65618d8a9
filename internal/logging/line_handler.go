package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// AuditTimestampLayout is the per-line timestamp used by run audit logs.
const AuditTimestampLayout = "15:04:05"

// LineHandler renders each record as a single line:
//
//	<timestamp> - LEVEL message key=value ...
//
// Every record is written with exactly one Write call on the underlying writer,
// so an unbuffered file receives whole lines even if the process dies mid-run.
type LineHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Leveler
	layout string
	attrs  []slog.Attr
	groups []string
}

// NewLineHandler returns a LineHandler writing to w. An empty layout selects
// AuditTimestampLayout and a nil level selects debug.
func NewLineHandler(w io.Writer, level slog.Leveler, layout string) *LineHandler {
	if layout == "" {
		layout = AuditTimestampLayout
	}
	if level == nil {
		level = slog.LevelDebug
	}
	return &LineHandler{mu: &sync.Mutex{}, writer: w, level: level, layout: layout}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})
	kvs = dedupeKVsByKey(kvs)

	var buf bytes.Buffer
	buf.Grow(96 + len(kvs)*24)
	buf.WriteString(formatTimestamp(ts, h.layout))
	buf.WriteString(" - ")
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')
	buf.WriteString(strings.TrimSpace(strings.ReplaceAll(record.Message, "\n", " ")))
	for _, kv := range kvs {
		if kv.key == FieldComponent {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(kv.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(kv.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *LineHandler) clone() *LineHandler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	clone.groups = append([]string(nil), h.groups...)
	return &clone
}
