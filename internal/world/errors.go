package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration marks invalid or missing folders, transcoder locations and
// flags. It is raised before anything on disk is touched.
var ErrConfiguration = errors.New("configuration error")

// Wrap builds an error message with operation context while tagging it with
// marker so callers can classify it with errors.Is.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "world failure"
	}
	return strings.Join(parts, ": ")
}

// ParseError reports a malformed record file. Line is 1-based for .db files
// and 0 for .json files.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
