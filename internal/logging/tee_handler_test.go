package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := teeHandler{
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	logger := slog.New(h).With("component", "store").WithGroup("pass")
	logger.Info("loaded", "name", "normalize")
	logger.Warn("skipped", "name", "duplicates")

	if !strings.Contains(console.String(), "loaded") || !strings.Contains(console.String(), "pass.name=duplicates") {
		t.Fatalf("console handler missing records: %q", console.String())
	}
	if strings.Contains(file.String(), "loaded") || !strings.Contains(file.String(), "component=store") {
		t.Fatalf("file handler got unexpected output: %q", file.String())
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) || h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("tee must be enabled exactly when one of its handlers is")
	}
}
