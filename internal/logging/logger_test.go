package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	NewComponentLogger(logger, "classifier").Info("walk complete",
		Int("cases", 3),
		String(FieldPath, "/data/src"),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO classifier: walk complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "cases=3") || !strings.Contains(line, "path=/data/src") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("match", String("description", "T2 STAR images"))
	if !strings.Contains(buf.String(), `description="T2 STAR images"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestTraceSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	Trace(logger, "rule evaluated")
	if buf.Len() != 0 {
		t.Fatalf("trace output leaked: %q", buf.String())
	}

	lvl.Set(LevelTrace)
	Trace(logger, "rule evaluated")
	if !strings.Contains(buf.String(), "TRACE rule evaluated") {
		t.Fatalf("missing trace line: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	ctx := WithRunID(context.Background(), "run-42")
	WithContext(ctx, logger).Info("started")
	if !strings.Contains(buf.String(), "run_id=run-42") {
		t.Fatalf("missing run id: %q", buf.String())
	}
}
