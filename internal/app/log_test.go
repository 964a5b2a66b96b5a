package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var logTime = time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

func TestSfmHandler_Handle(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "info message",
			level:   slog.LevelInfo,
			message: "file backed up",
			want:    "2024-06-15T14:30:45Z\tINFO\top-1\tfile backed up\n",
		},
		{
			name:    "debug level",
			level:   slog.LevelDebug,
			message: "skipping ignored folder",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-1\tskipping ignored folder\n",
		},
		{
			name:    "record attrs",
			level:   slog.LevelInfo,
			message: "sorted",
			attrs:   []slog.Attr{slog.String("path", "/docs/file.txt"), slog.Int("moved", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-1\tsorted\tpath=/docs/file.txt\tmoved=42\n",
		},
		{
			name:    "values with whitespace are quoted",
			level:   slog.LevelWarn,
			message: "failed to move file",
			attrs:   []slog.Attr{slog.String("path", "My Files/a\tb.txt")},
			want:    "2024-06-15T14:30:45Z\tWARN\top-1\tfailed to move file\tpath=\"My Files/a\\tb.txt\"\n",
		},
		{
			name:    "group attrs are flattened",
			level:   slog.LevelInfo,
			message: "pass complete",
			attrs:   []slog.Attr{slog.Group("result", slog.Int("copied", 2), slog.Int("skipped", 5))},
			want:    "2024-06-15T14:30:45Z\tINFO\top-1\tpass complete\tresult.copied=2\tresult.skipped=5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newSFMHandler(&buf, "op-1", nil)

			r := slog.NewRecord(logTime, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestSfmHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	base := newSFMHandler(&buf, "op-1", nil)

	h := base.WithAttrs([]slog.Attr{slog.String("component", "watcher")}).
		WithGroup("event").
		WithAttrs([]slog.Attr{slog.String("op", "CREATE")})

	r := slog.NewRecord(logTime, slog.LevelInfo, "event", 0)
	r.AddAttrs(slog.String("path", "a.txt"))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	want := "2024-06-15T14:30:45Z\tINFO\top-1\tevent\tcomponent=watcher\tevent.op=CREATE\tevent.path=a.txt\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant:\n%q", got, want)
	}

	buf.Reset()
	if err := base.Handle(context.Background(), slog.NewRecord(logTime, slog.LevelInfo, "plain", 0)); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); strings.Contains(got, "component") || strings.Contains(got, "event.") {
		t.Errorf("derived handlers mutated the original: %q", got)
	}
}

func TestSfmHandler_Enabled(t *testing.T) {
	all := newSFMHandler(nil, "", nil)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !all.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false without a threshold", level)
		}
	}

	warn := newSFMHandler(nil, "", slog.LevelWarn)
	if warn.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(Info) = true with Warn threshold")
	}
	if !warn.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(Error) = false with Warn threshold")
	}
}

func TestSfmHandler_ConcurrentRecordsStayWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSFMHandler(&buf, "op-1", nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("file created, running backup", "path", "Documents/report.pdf")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "\tpath=Documents/report.pdf") {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, f, err := newLogger(dir, "test-op", slog.LevelInfo, &console)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Debug("hidden")
	logger.Info("pass complete", "copied", 3)

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "\ttest-op\tpass complete\tcopied=3") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug record written below threshold: %q", data)
	}
	if console.String() != string(data) {
		t.Errorf("console output %q differs from file %q", console.String(), data)
	}
}
