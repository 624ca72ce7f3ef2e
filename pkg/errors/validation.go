package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateFileName validates a name that will be joined onto an agent
// directory, such as the compiled document name. It must be a plain base
// name: no separators, no traversal, no hidden files, no control
// characters.
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "file name cannot be empty")
	}

	const maxLength = 255
	if len(name) > maxLength {
		return New(ErrCodeInvalidName, "file name too long (max %d characters)", maxLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "file name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return New(ErrCodeInvalidName, "file name cannot contain path separators: %q", name)
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "file name cannot be hidden or relative: %q", name)
	}

	return nil
}
