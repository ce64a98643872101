// =============================================================================
// rcli - File Manager Utility
// =============================================================================
//
// This module provides the file helpers used by the CLI and the converter:
//   - Input existence checks
//   - Default output naming
//   - Atomic output writes (temp file + rename)
//
// WRITE STRATEGY:
//   Output is first written to a hidden temp file next to the destination,
//   named with a random UUID, then renamed over the destination. A failed
//   write removes the temp file, so the destination is either fully replaced
//   or left untouched.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StdoutPath is the output destination that selects standard output.
const StdoutPath = "-"

// defaultOutputBase is the file name used when no output path is given.
const defaultOutputBase = "output"

// =============================================================================
// FILE CHECKS
// =============================================================================

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DefaultOutputPath returns the output path derived from a format extension,
// e.g. "output.json".
func DefaultOutputPath(extension string) string {
	return defaultOutputBase + "." + extension
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes data to path, replacing any existing file.
//
// PARAMETERS:
//   - path: The destination file. Its directory must exist.
//   - data: The complete file content.
//   - perm: The permission bits of the final file.
//
// RETURNS:
//   - An error if the temp file cannot be created, written, or renamed.
//     The destination is not modified in that case.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, tempName(filepath.Base(path)))

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// WriteOutput writes data to path, or to stdout when path is StdoutPath.
func WriteOutput(path string, data []byte, stdout io.Writer) error {
	if path == StdoutPath {
		_, err := stdout.Write(data)
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

// tempName returns a hidden, collision-free sibling name for base.
func tempName(base string) string {
	return fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString())
}
