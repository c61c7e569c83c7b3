package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"worldmanager/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.UserDataDir = filepath.Join(base, "Data")
	cfgVal.Paths.CoreDataDir = filepath.Join(base, "core")
	cfgVal.Paths.WorldDir = DefaultWorldDir
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Transcoder.FFmpegPath = filepath.Join(base, "bin", "ffmpeg")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorld points the config at the folders of an existing test world.
func WithWorld(w *World) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.UserDataDir = w.DataRoot
		b.cfg.Paths.WorldDir = w.WorldDir
		b.cfg.Paths.CoreDataDir = w.CoreRoot
	}
}

// WithPurge enables deleting the trash folder at the end of a run.
func WithPurge() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Trash.Purge = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names into
// the config's bin folder and prepends it to PATH. If names is empty, an
// ffmpeg stub is written and the config points at it.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
