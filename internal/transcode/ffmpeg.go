package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// ErrTranscode marks a failed conversion. It is never fatal to a run.
var ErrTranscode = errors.New("transcode failed")

// Transcoder converts the image at src into the normalized format at dst.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
}

// Option configures the FFmpeg client.
type Option func(*FFmpeg)

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if strings.TrimSpace(binary) != "" {
			f.binary = binary
		}
	}
}

// WithCodec overrides the video codec used for the output image.
func WithCodec(codec string) Option {
	return func(f *FFmpeg) {
		if strings.TrimSpace(codec) != "" {
			f.codec = codec
		}
	}
}

// FFmpeg runs `ffmpeg -y -i <src> -c:v libwebp <dst>`.
type FFmpeg struct {
	binary string
	codec  string
}

// NewFFmpeg constructs a client using defaults.
func NewFFmpeg(opts ...Option) *FFmpeg {
	f := &FFmpeg{binary: "ffmpeg", codec: "libwebp"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Binary returns the configured executable.
func (f *FFmpeg) Binary() string { return f.binary }

// Transcode converts src to dst, overwriting dst if present.
func (f *FFmpeg) Transcode(ctx context.Context, src, dst string) error {
	if src == "" {
		return errors.New("source path required")
	}
	if dst == "" {
		return errors.New("destination path required")
	}

	args := []string{"-y", "-i", src, "-c:v", f.codec, dst, "-hide_banner", "-loglevel", "error"}
	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%w: %s: %v: %s", ErrTranscode, src, err, detail)
		}
		return fmt.Errorf("%w: %s: %v", ErrTranscode, src, err)
	}
	if info, statErr := os.Stat(dst); statErr != nil || info.IsDir() {
		return fmt.Errorf("%w: %s: no output at %s", ErrTranscode, src, dst)
	}
	return nil
}

var _ Transcoder = (*FFmpeg)(nil)
