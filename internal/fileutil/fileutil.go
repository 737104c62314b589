// Package fileutil provides file and path helpers for the enhance command.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// EnhancedSuffix is inserted before the extension of output files.
const EnhancedSuffix = ".enhanced"

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", "enhance-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}
	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than
// a name: "dev" is a name, "./dev.yaml" and "conf/dev" are paths.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsHTML reports whether path has an .html or .htm extension, ignoring
// files that are already enhanced output.
func IsHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".html" && ext != ".htm" {
		return false
	}
	return !strings.HasSuffix(strings.ToLower(strings.TrimSuffix(path, filepath.Ext(path))), EnhancedSuffix)
}

// EnhancedName returns the output name for an input page:
// "post.html" becomes "post.enhanced.html".
func EnhancedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + EnhancedSuffix + ext
}

// WithExtension replaces the extension of path with ext (".pdf").
func WithExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
