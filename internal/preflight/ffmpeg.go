package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

const ffmpegCheckName = "FFmpeg"

// CheckFFmpeg reports whether the configured ffmpeg can be executed. An
// explicit path must be an executable file; a bare name is looked up on PATH.
// Empty means "ffmpeg".
func CheckFFmpeg(configured string) Result {
	command := strings.TrimSpace(configured)
	if command == "" {
		command = "ffmpeg"
	}

	if !strings.ContainsAny(command, `/\`) {
		resolved, err := exec.LookPath(command)
		if err != nil {
			return Result{Name: ffmpegCheckName, Detail: fmt.Sprintf("binary %q not found on PATH", command)}
		}
		return Result{Name: ffmpegCheckName, Passed: true, Detail: resolved}
	}

	info, err := os.Stat(command)
	if err != nil {
		return Result{Name: ffmpegCheckName, Detail: fmt.Sprintf("%s does not exist", command)}
	}
	if info.IsDir() || unix.Access(command, unix.X_OK) != nil {
		return Result{Name: ffmpegCheckName, Detail: fmt.Sprintf("%s is not an executable file", command)}
	}
	return Result{Name: ffmpegCheckName, Passed: true, Detail: command}
}
