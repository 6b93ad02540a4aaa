package errors

import (
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds entity, edge and subgraph identifiers.
const MaxIdentifierLength = 512

// ValidateIdentifier validates an entity or graph identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No surrounding whitespace
//   - Maximum length of MaxIdentifierLength bytes
//
// Identifiers are otherwise opaque (IRIs, UUIDs and plain names are all fine).
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidIdentifier, "identifier cannot be empty")
	}

	if len(id) > MaxIdentifierLength {
		return New(ErrCodeInvalidIdentifier, "identifier too long (max %d characters)", MaxIdentifierLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidIdentifier, "identifier %q contains control characters", id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidIdentifier, "identifier %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateIdentifiers validates every identifier in ids and reports the first failure.
func ValidateIdentifiers(ids []string) error {
	for _, id := range ids {
		if err := ValidateIdentifier(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in a config file.
// Unlike identifiers, paths may be absolute; they must not contain null bytes.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "path contains invalid characters")
	}

	return nil
}

// ValidateURL validates a connection URL for the given schemes (e.g. "redis", "mongodb").
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidConfig, "URL %q must use one of the schemes %v", rawURL, schemes)
}
