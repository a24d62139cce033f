// Package domain defines the types and ports for the tracker service
package domain

import (
	"fmt"
	"strconv"
	"strings"

	"gittracker/internal/core/daterange"
	"gittracker/internal/platform/validate"
)

// DefaultLimit is the feed page size used when a directive does not set one
const DefaultLimit = 50

// TrackerConfig is one parsed directive: which feed to render and how.
// Start/Stop nil means no date filtering, most-recent-first feed
type TrackerConfig struct {
	Owner string `json:"user" validate:"required"`
	Repo  string `json:"repo" validate:"required"`
	Limit int    `json:"limit" validate:"gt=0"`
	Debug bool   `json:"debug"`

	Start *daterange.CalendarDate `json:"start"`
	Stop  *daterange.CalendarDate `json:"stop"`

	// Extra carries unknown directive keys through without effect
	Extra map[string]string `json:"-"`
}

// NewConfig returns a TrackerConfig with documented defaults applied
func NewConfig(owner, repo string) TrackerConfig {
	return TrackerConfig{Owner: owner, Repo: repo, Limit: DefaultLimit}
}

// Validate checks the config at construction time, not ad hoc per call
func (c TrackerConfig) Validate() error {
	return validate.Struct(c)
}

// Ranged reports whether the date-filtering path is active
func (c TrackerConfig) Ranged() bool { return c.Start != nil || c.Stop != nil }

// Interval builds the half-open filtering interval from the configured bounds
func (c TrackerConfig) Interval() daterange.Interval {
	return daterange.HalfOpen(c.Start, c.Stop)
}

// CacheKey derives the deterministic store key for this query.
// Date-scoped and unscoped queries never share a key; open bounds
// render as * so the scoped form stays unambiguous
func (c TrackerConfig) CacheKey() string {
	base := fmt.Sprintf("events:%s/%s", c.Owner, c.Repo)
	if !c.Ranged() {
		return base
	}
	lo, hi := "*", "*"
	if c.Start != nil {
		lo = c.Start.String()
	}
	if c.Stop != nil {
		hi = c.Stop.String()
	}
	return base + ":" + lo + ".." + hi
}

// FromFields builds a TrackerConfig from raw directive fields.
// Malformed values are skipped with a warning for that value only;
// unknown keys pass through into Extra
func FromFields(fields map[string]string) (TrackerConfig, []string) {
	cfg := NewConfig("", "")
	var warns []string

	for k, v := range fields {
		switch k {
		case "user":
			cfg.Owner = v
		case "repo":
			cfg.Repo = v
		case "limit":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				warns = append(warns, fmt.Sprintf("limit %q is not a positive integer, using %d", v, DefaultLimit))
				continue
			}
			cfg.Limit = n
		case "debug":
			cfg.Debug = strings.EqualFold(v, "true") || v == "1"
		case "start":
			d, err := daterange.Parse(v)
			if err != nil {
				warns = append(warns, fmt.Sprintf("start %q ignored: %v", v, err))
				continue
			}
			cfg.Start = &d
		case "stop":
			d, err := daterange.Parse(v)
			if err != nil {
				warns = append(warns, fmt.Sprintf("stop %q ignored: %v", v, err))
				continue
			}
			cfg.Stop = &d
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]string)
			}
			cfg.Extra[k] = v
		}
	}
	return cfg, warns
}
