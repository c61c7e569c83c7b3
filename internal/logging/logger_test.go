package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"worldmanager/internal/config"
	"worldmanager/internal/logging"
)

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "repair").Info("converted image",
		logging.String(logging.FieldPath, "worlds/w/a b.png"),
		logging.Int("refs", 2),
	)

	line := buf.String()
	if !strings.Contains(line, " INFO repair: converted image") {
		t.Fatalf("unexpected console line %q", line)
	}
	if !strings.Contains(line, `path="worlds/w/a b.png"`) || !strings.Contains(line, "refs=2") {
		t.Fatalf("expected attributes in %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestJSONLoggerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if record["msg"] != "json message" || record["level"] != "info" || record["k"] != "v" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFileOutputReceivesJSON(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "worldmanager.log")
	logger, err := logging.New(logging.Options{
		Format: "console",
		Level:  "info",
		Writer: &console,
		File:   &logging.FileOptions{Path: logPath, MaxSizeMB: 1, MaxBackups: 1},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("persisted", logging.String(logging.FieldWorld, "worlds/w"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"world":"worlds/w"`) {
		t.Fatalf("expected JSON record in file, got %q", content)
	}
	if !strings.Contains(console.String(), "INFO persisted") {
		t.Fatalf("expected console record, got %q", console.String())
	}
}

func TestNewFromConfigWithFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.File = true

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("written to file")
	if _, err := os.Stat(cfg.LogFilePath()); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(console.String(), "written to file") {
		t.Fatalf("expected console record, got %q", console.String())
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := logging.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, base).Info("contextual log")
	if !strings.Contains(buf.String(), `"run_id":"run-123"`) {
		t.Fatalf("expected run id in %q", buf.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logging.WarnWithContext(base, "transcode failed", "transcode_failed",
		logging.String(logging.FieldErrorHint, "check ffmpeg"))
	out := buf.String()
	for _, want := range []string{`"event_type":"transcode_failed"`, `"error_hint":"check ffmpeg"`, `"impact":`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("dropped")
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
