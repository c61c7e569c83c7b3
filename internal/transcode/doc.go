// Package transcode wraps the external image transcoder used to produce the
// normalized webp copy of an asset.
//
// The FFmpeg client shells out once per image and treats a non-zero exit or
// a missing output file as failure. Failures wrap ErrTranscode so callers can
// keep going with the next image. Tests replace the command factory to avoid
// running the real binary.
package transcode
