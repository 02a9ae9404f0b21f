// internal/service/validate.go
package service

import (
	"net/mail"
	"net/url"
	"strings"

	appErrors "github.com/serphawk/outreach-backend/internal/errors"
)

// validEmail accepts a bare address like ops@acme.test. Display names and
// address lists are rejected: drafts address exactly one contact.
func validEmail(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	return parsed.Address == addr
}

// normalizeURL lowercases, trims and prefixes https:// when the scheme is
// missing, then checks the result parses as an absolute HTTP(S) URL.
func normalizeURL(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", appErrors.NewValidation("website_url is required")
	}
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" {
		return "", appErrors.NewValidation("website_url is not a valid http(s) url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", appErrors.NewValidation("website_url must use http or https")
	}
	return normalized, nil
}
