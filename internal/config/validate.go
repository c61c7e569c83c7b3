package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Validate ensures the configuration is usable. It checks shape only; the
// preflight package verifies that folders and binaries actually exist.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validateRepair(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.UserDataDir == "" {
		return errors.New("paths.user_data_dir must be set")
	}
	if c.Paths.CoreDataDir == "" {
		return errors.New("paths.core_data_dir must be set")
	}
	if c.Paths.WorldDir == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/worldmanager/config.toml"
		}
		return fmt.Errorf("paths.world_dir is required. Pass --world or edit %s (create with 'worldmanager config init')", defaultPath)
	}
	if path.IsAbs(c.Paths.WorldDir) || strings.HasPrefix(c.Paths.WorldDir, "../") || c.Paths.WorldDir == ".." {
		return fmt.Errorf("paths.world_dir must be relative to the user data folder, got %q", c.Paths.WorldDir)
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	if c.Transcoder.FFmpegPath == "" {
		return errors.New("transcoder.ffmpeg_path must be set")
	}
	return nil
}

func (c *Config) validateRepair() error {
	if strings.Contains(c.Repair.LegacySegment, "/") || strings.Contains(c.Repair.WorldSegment, "/") {
		return errors.New("repair.legacy_segment and repair.world_segment must be single path segments")
	}
	if c.Repair.LegacySegment == c.Repair.WorldSegment {
		return errors.New("repair.legacy_segment must differ from repair.world_segment")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
