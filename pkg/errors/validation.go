package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// albumCodeRegex matches codes that are safe to embed in file names.
var albumCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateAlbumCode validates an album code before it is used in an
// export file name. An empty code is valid and exports as "preview".
func ValidateAlbumCode(code string) error {
	if code == "" {
		return nil
	}
	if len(code) > 64 {
		return New(ErrCodeInvalidInput, "album code too long (max 64 characters)")
	}
	if !albumCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidInput, "invalid album code %q: use letters, digits, '-' and '_'", code)
	}
	return nil
}

// ValidatePath validates a relative output path. It rejects traversal,
// absolute paths, backslashes and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateAssetURL validates the source of a background or visitor photo.
// Accepted are http(s) URLs, file:// URLs, base64 data URLs and plain
// file paths.
func ValidateAssetURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "asset URL cannot be empty")
	}
	for _, r := range raw {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "asset URL contains a null byte")
		}
	}

	scheme, _, ok := strings.Cut(raw, ":")
	if !ok || len(scheme) < 2 || strings.ContainsAny(scheme, `/\.`) {
		// Plain path; a single letter scheme is a Windows drive.
		return nil
	}
	switch strings.ToLower(scheme) {
	case "http", "https", "file", "data":
		return nil
	}
	return New(ErrCodeInvalidInput, "unsupported asset scheme %q (use http, https, file or data)", scheme)
}

// templateIDRegex matches catalog template identifiers.
var templateIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidateTemplateID validates a layout template identifier.
func ValidateTemplateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTemplate, "template id cannot be empty")
	}
	if !templateIDRegex.MatchString(id) {
		return New(ErrCodeInvalidTemplate, "invalid template id %q: use lowercase letters, digits and '-'", id)
	}
	return nil
}
