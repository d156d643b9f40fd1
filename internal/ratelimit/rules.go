package ratelimit

import (
	"fmt"
	"time"

	"github.com/yourfuture/platform/pkg/config"
)

// DefaultPerUserLimit applies when the config leaves the limit unset.
const DefaultPerUserLimit = 60

// DefaultPerUserWindow applies when the config leaves the window unset.
const DefaultPerUserWindow = time.Minute

// Rules resolves the configured per-caller limits for HTTP requests.
// Anonymous callers are keyed by client IP, authenticated ones by user
// ID so a shared NAT does not starve signed-in users.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether rate limiting applies at all.
func (r *Rules) Enabled() bool {
	return r.config.Enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	for _, id := range r.config.Whitelist {
		if id == userID {
			return true
		}
	}
	return false
}

// PerUserLimit returns the request budget and window for one caller.
func (r *Rules) PerUserLimit() (int, time.Duration) {
	limit := r.config.PerUserLimit
	if limit <= 0 {
		limit = DefaultPerUserLimit
	}
	window := r.config.PerUserWindow
	if window <= 0 {
		window = DefaultPerUserWindow
	}
	return limit, window
}

// UserKey builds the limiter key for an authenticated caller.
func UserKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// IPKey builds the limiter key for an anonymous caller.
func IPKey(ip string) string {
	return "ip:" + ip
}
