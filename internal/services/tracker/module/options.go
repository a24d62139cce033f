package module

import (
	"time"

	"gittracker/internal/platform/config"
)

// Options holds configuration settings for the tracker module
type Options struct {
	TTL        time.Duration
	APIHost    string
	ViewerHost string
	Token      string
	Timeout    time.Duration
}

// FromConfig reads settings from the TRACKER_ env scope
func FromConfig(cfg config.Conf) Options {
	tc := cfg.Prefix("TRACKER_")
	return Options{
		TTL:        tc.MayDuration("CACHE_TTL", 15*time.Minute),
		APIHost:    tc.MayString("API_HOST", "https://api.github.com"),
		ViewerHost: tc.MayString("VIEWER_HOST", "https://github.com"),
		Token:      tc.MayString("TOKEN", ""),
		Timeout:    tc.MayDuration("HTTP_TIMEOUT", 10*time.Second),
	}
}
