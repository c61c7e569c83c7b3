package config

import (
	"runtime"
)

const (
	defaultStateDir      = "~/.local/share/worldmanager"
	defaultLogDir        = "~/.local/share/worldmanager/logs"
	defaultCodec         = "libwebp"
	defaultLegacySegment = "modules"
	defaultWorldSegment  = "worlds"
	defaultSettingsFile  = "data/settings.db"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 30
)

type platformDefaults struct {
	userData string
	coreData string
	ffmpeg   string
}

// platformPaths mirrors the standard Foundry install locations per OS.
func platformPaths(goos string) platformDefaults {
	switch goos {
	case "windows":
		return platformDefaults{
			userData: "~/AppData/Local/FoundryVTT/Data",
			coreData: `C:\Program Files\FoundryVTT\resources\app\public`,
			ffmpeg:   "ffmpeg.exe",
		}
	case "darwin":
		return platformDefaults{
			userData: "~/Library/Application Support/FoundryVTT/Data",
			coreData: "/Applications/FoundryVTT.app/Contents/Resources/app/public",
			ffmpeg:   "/usr/local/bin/ffmpeg",
		}
	default:
		return platformDefaults{
			userData: "~/foundrydata/Data",
			coreData: "~/foundryvtt/resources/app/public",
			ffmpeg:   "/usr/bin/ffmpeg",
		}
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	platform := platformPaths(runtime.GOOS)
	return Config{
		Paths: Paths{
			UserDataDir: platform.userData,
			CoreDataDir: platform.coreData,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Transcoder: Transcoder{
			FFmpegPath: platform.ffmpeg,
			Codec:      defaultCodec,
		},
		Repair: Repair{
			LegacySegment: defaultLegacySegment,
			WorldSegment:  defaultWorldSegment,
			SettingsFile:  defaultSettingsFile,
			HashCache:     true,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
