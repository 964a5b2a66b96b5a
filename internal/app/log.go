package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// LogFileName is the log file written inside the configured log dir.
const LogFileName = "sfm.log"

// sfmHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Each record is written with a single Write under mu, so lines from the
// watcher goroutine and the menu never interleave.
type sfmHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opID   string
	level  slog.Leveler
	prefix string // group path, "name." per open group
	attrs  []byte // preformatted "\tkey=value" pairs from WithAttrs
}

func newSFMHandler(w io.Writer, opID string, level slog.Leveler) *sfmHandler {
	return &sfmHandler{mu: &sync.Mutex{}, w: w, opID: opID, level: level}
}

func (h *sfmHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

func (h *sfmHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 128)
	buf = r.Time.UTC().AppendFormat(buf, "2006-01-02T15:04:05Z")
	buf = append(buf, '\t')
	buf = append(buf, r.Level.String()...)
	buf = append(buf, '\t')
	buf = append(buf, h.opID...)
	buf = append(buf, '\t')
	buf = append(buf, r.Message...)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *sfmHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		h2.attrs = appendAttr(h2.attrs, h.prefix, a)
	}
	return &h2
}

func (h *sfmHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

// appendAttr writes "\tkey=value", flattening groups into dotted keys.
// Values holding tabs, newlines or spaces are quoted to keep one record per
// line.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, inner, ga)
		}
		return buf
	}

	buf = append(buf, '\t')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\n\r\"") {
		return strconv.AppendQuote(buf, v)
	}
	return append(buf, v...)
}

// newLogger creates a structured logger that writes to logDir/sfm.log and,
// when console is non-nil, to console as well. Records below level are
// dropped. It returns the slog.Logger, the open log file (for cleanup), and
// any error.
func newLogger(logDir, opID string, level slog.Leveler, console io.Writer) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var w io.Writer = f
	if console != nil {
		w = io.MultiWriter(f, console)
	}
	return slog.New(newSFMHandler(w, opID, level)), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the sfm.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
