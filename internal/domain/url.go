package domain

import (
	"net/url"
	"strings"
)

// ValidLink reports whether raw is an absolute http(s) URL; the only
// link shape profiles and listings accept.
func ValidLink(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
