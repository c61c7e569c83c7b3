package preflight

import (
	"context"
	"fmt"
	"strings"

	"worldmanager/internal/config"
	"worldmanager/internal/world"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every input check for cfg in a fixed order.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("User data folder", cfg.Paths.UserDataDir),
	}
	if strings.TrimSpace(cfg.Paths.WorldDir) == "" {
		results = append(results, Result{Name: "World folder", Detail: "not configured"})
	} else {
		results = append(results, CheckDirectoryAccess("World folder", cfg.WorldRoot()))
	}
	results = append(results,
		CheckDirectoryReadable("Core data folder", cfg.Paths.CoreDataDir),
		CheckFFmpeg(cfg.Transcoder.FFmpegPath),
	)
	return results
}

// Err folds failed results into one configuration error, or nil when every
// check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return world.Wrap(world.ErrConfiguration, "preflight", strings.Join(failed, "; "), nil)
}
