package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Environment variables that override the file configuration.
const (
	EnvUserData = "WORLDMANAGER_USER_DATA"
	EnvCoreData = "WORLDMANAGER_CORE_DATA"
	EnvFFmpeg   = "WORLDMANAGER_FFMPEG"
)

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv(EnvUserData); ok && strings.TrimSpace(value) != "" {
		c.Paths.UserDataDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvCoreData); ok && strings.TrimSpace(value) != "" {
		c.Paths.CoreDataDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvFFmpeg); ok && strings.TrimSpace(value) != "" {
		c.Transcoder.FFmpegPath = strings.TrimSpace(value)
	}
}

// Normalize expands paths and fills blank fields with defaults. It is safe
// to call again after flags have been applied.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscoder(); err != nil {
		return err
	}
	c.normalizeRepair()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.UserDataDir, err = expandPath(strings.TrimSpace(c.Paths.UserDataDir)); err != nil {
		return fmt.Errorf("paths.user_data_dir: %w", err)
	}
	if c.Paths.CoreDataDir, err = expandPath(strings.TrimSpace(c.Paths.CoreDataDir)); err != nil {
		return fmt.Errorf("paths.core_data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.WorldDir = normalizeWorldDir(c.Paths.WorldDir)
	return nil
}

// normalizeWorldDir keeps the world folder relative and slash separated,
// e.g. `worlds\porvenir\` becomes "worlds/porvenir".
func normalizeWorldDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	dir = strings.ReplaceAll(dir, `\`, "/")
	dir = path.Clean(dir)
	if dir == "." {
		return ""
	}
	return dir
}

func (c *Config) normalizeTranscoder() error {
	c.Transcoder.FFmpegPath = strings.TrimSpace(c.Transcoder.FFmpegPath)
	// Bare names are looked up on PATH later; only expand real paths.
	if strings.ContainsAny(c.Transcoder.FFmpegPath, `/\`) || strings.HasPrefix(c.Transcoder.FFmpegPath, "~") {
		expanded, err := expandPath(c.Transcoder.FFmpegPath)
		if err != nil {
			return fmt.Errorf("transcoder.ffmpeg_path: %w", err)
		}
		c.Transcoder.FFmpegPath = expanded
	}
	c.Transcoder.Codec = strings.TrimSpace(c.Transcoder.Codec)
	if c.Transcoder.Codec == "" {
		c.Transcoder.Codec = defaultCodec
	}
	return nil
}

func (c *Config) normalizeRepair() {
	c.Repair.LegacySegment = strings.Trim(strings.TrimSpace(c.Repair.LegacySegment), "/")
	if c.Repair.LegacySegment == "" {
		c.Repair.LegacySegment = defaultLegacySegment
	}
	c.Repair.WorldSegment = strings.Trim(strings.TrimSpace(c.Repair.WorldSegment), "/")
	if c.Repair.WorldSegment == "" {
		c.Repair.WorldSegment = defaultWorldSegment
	}
	c.Repair.SettingsFile = filepath.ToSlash(strings.TrimSpace(c.Repair.SettingsFile))
	if c.Repair.SettingsFile == "" {
		c.Repair.SettingsFile = defaultSettingsFile
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = defaultLogMaxAgeDays
	}
}
