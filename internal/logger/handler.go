package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	purple = "\033[35m"
	cyan   = "\033[36m"
	gray   = "\033[37m"
	white  = "\033[97m"
)

type Options struct {
	Level   slog.Leveler
	NoColor bool
}

// PrettyHandler writes one colored line per record:
// time, level, message, then key=value attributes.
type PrettyHandler struct {
	opts   Options
	w      io.Writer
	mu     *sync.Mutex
	prefix string
	attrs  []slog.Attr
}

func NewPrettyHandler(w io.Writer, opts *Options) *PrettyHandler {
	h := &PrettyHandler{w: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// New returns a logger backed by a PrettyHandler.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewPrettyHandler(w, &Options{Level: level}))
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	h.paint(&buf, gray, r.Time.Format("15:04:05.000"))
	buf.WriteByte(' ')
	h.paint(&buf, levelColor(r.Level), fmt.Sprintf("%-5s", r.Level.String()))
	buf.WriteByte(' ')
	h.paint(&buf, white, r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = joinKey(prefix, a.Key)
		}
		for _, nested := range a.Value.Group() {
			h.writeAttr(buf, groupPrefix, nested)
		}
		return
	}

	key := joinKey(prefix, a.Key)
	valueColor := ""
	if _, isErr := a.Value.Any().(error); isErr || key == "error" {
		valueColor = red
	}

	buf.WriteByte(' ')
	h.paint(buf, cyan, key)
	buf.WriteByte('=')
	h.paint(buf, valueColor, formatValue(a.Value))
}

func (h *PrettyHandler) paint(buf *bytes.Buffer, color string, text string) {
	if h.opts.NoColor || color == "" {
		buf.WriteString(text)
		return
	}
	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(reset)
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = joinKey(h.prefix, a.Key)
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return red
	case level >= slog.LevelWarn:
		return yellow
	case level >= slog.LevelInfo:
		return green
	default:
		return purple
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}

func joinKey(prefix string, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
