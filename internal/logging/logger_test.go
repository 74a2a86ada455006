package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shotscan/internal/config"
	"shotscan/internal/logging"
)

func newLogFile(t *testing.T) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	read := func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(data)
	}
	return path, read
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "shotscan.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from config") {
		t.Fatalf("expected message in log file, got %q", data)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	path, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{path}, ErrorOutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "detect").Info("candidates selected", "video", "clip one", "count", 4)

	content := read()
	if !strings.Contains(content, " INFO detect: candidates selected") {
		t.Fatalf("unexpected console line: %q", content)
	}
	if !strings.Contains(content, `video="clip one"`) || !strings.Contains(content, "count=4") {
		t.Fatalf("expected quoted fields, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller at info level, got %q", content)
	}
	if strings.Contains(content, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	path, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")
	if !strings.Contains(read(), "logger_test.go:") {
		t.Fatal("expected caller information in debug logs")
	}
}

func TestJSONLoggerUsesStableKeys(t *testing.T) {
	path, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "lane failed", "lane_failed", logging.Error(errors.New("boom")))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" || entry["msg"] != "lane failed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry[logging.FieldEventType] != "lane_failed" || entry[logging.FieldImpact] == nil || entry[logging.FieldErrorHint] == nil {
		t.Fatalf("expected enforced warning fields, got %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	path, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "run-1")
	ctx = logging.WithVideo(ctx, "clip")
	ctx = logging.WithStream(ctx, "0")

	logging.WithContext(ctx, logger).Info("tagged")
	content := read()
	for _, want := range []string{"run_id=run-1", "video=clip", "stream=0"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if id, ok := logging.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q %v", id, ok)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should be disabled")
	}
}
