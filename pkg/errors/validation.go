package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxBlockNameLength bounds block names accepted from documents.
const MaxBlockNameLength = 256

// ValidateBlockName validates the name of a block element.
//
// Names end up verbatim in the header line of the rendered block, so the
// rules keep that line intact:
//   - No empty or whitespace-only names
//   - No line breaks or other control characters
//   - Maximum length of 256 characters
func ValidateBlockName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidElement, "block name cannot be empty")
	}

	if len(name) > MaxBlockNameLength {
		return New(ErrCodeInvalidElement, "block name too long (max %d characters)", MaxBlockNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElement, "block name %q contains control characters", name)
		}
	}

	return nil
}

// ValidatePath validates a document path given on the command line or in
// configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateFormat checks that format is one of allowed.
// The comparison is case-sensitive; callers normalise first.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}
