package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxIDLength bounds member ids accepted from the backend or the command line.
const maxIDLength = 128

// ValidateMemberID validates a member id for safety and correctness.
// Ids end up in URLs, SVG attributes and store keys, so the rules are strict:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators or quotes
//   - Maximum length of 128 characters
func ValidateMemberID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "member id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "member id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "member id %q contains whitespace or control characters", id)
		}
	}
	if strings.ContainsAny(id, `/\"'<>`) {
		return New(ErrCodeInvalidInput, "member id %q contains invalid characters", id)
	}
	return nil
}

// ValidateBaseURL validates the backend base URL.
// It must be absolute and use http or https.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "backend URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid backend URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidConfig, "backend URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "backend URL %q has no host", rawURL)
	}
	return nil
}
