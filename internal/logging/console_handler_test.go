package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestConsoleLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newPrettyHandler(buf, levelVar, false))
}

func TestPrettyHandlerHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)
	logger = logger.With(String(FieldComponent, "scheduler"), String(FieldRunID, "abcd1234-0000"))

	logger.Info("file enhanced", String("output", "/out/a.wav"), Duration("elapsed", 250*time.Millisecond))

	out := buf.String()
	if !strings.Contains(out, "[scheduler]") {
		t.Fatalf("missing component: %s", out)
	}
	if !strings.Contains(out, "Run abcd1234") {
		t.Fatalf("missing shortened run id: %s", out)
	}
	if !strings.Contains(out, "- file enhanced") {
		t.Fatalf("missing message: %s", out)
	}
	if !strings.Contains(out, "output: /out/a.wav") {
		t.Fatalf("missing field line: %s", out)
	}
}

func TestPrettyHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	logger.Info("dispatched", slog.Group("job", slog.Int("index", 2), slog.String("mode", "pool")))

	out := buf.String()
	if !strings.Contains(out, "job.index: 2") || !strings.Contains(out, "job.mode: pool") {
		t.Fatalf("group attrs not flattened: %s", out)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelWarn)

	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
