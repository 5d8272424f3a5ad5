package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// nodeIDRegex matches the ids produced by the graph builder.
var nodeIDRegex = regexp.MustCompile(`^(source|package-\d+|procedure-\d+-\d+|step-\d+-\d+-\d+)$`)

// ValidateNodeID checks that id has the shape of a graph node id.
//
// Position overrides accept any non-empty id and skip this check; it is for
// inputs that must address an existing node, such as click and detail requests.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidNodeID, "node id too long (max 128 characters)")
	}
	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidNodeID, "malformed node id: %q", id)
	}
	return nil
}

// ValidatePath validates a report or output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
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

// ValidateSessionID validates a session identifier taken from a URL or file name.
// It rejects anything that could escape a storage directory.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "session id too long (max 64 characters)")
	}
	if strings.ContainsAny(id, "/\\.") {
		return New(ErrCodeInvalidInput, "session id contains invalid characters")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "session id contains invalid characters")
		}
	}
	return nil
}

// ValidateFormat checks format against the allowed set.
func ValidateFormat(format string, allowed map[string]bool) error {
	if !allowed[format] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
	return nil
}
