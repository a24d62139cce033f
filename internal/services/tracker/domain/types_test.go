package domain

import (
	"testing"

	"gittracker/internal/core/daterange"
	perr "gittracker/internal/platform/errors"
)

func TestValidate(t *testing.T) {
	cfg := NewConfig("octocat", "hello")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	missing := NewConfig("", "hello")
	err := missing.Validate()
	if err == nil {
		t.Fatalf("missing owner should fail validation")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation code, got %v", perr.CodeOf(err))
	}

	bad := NewConfig("octocat", "hello")
	bad.Limit = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("zero limit should fail validation")
	}
}

func TestCacheKey(t *testing.T) {
	cfg := NewConfig("octocat", "hello")
	if got := cfg.CacheKey(); got != "events:octocat/hello" {
		t.Fatalf("unscoped key = %q", got)
	}

	start := daterange.CalendarDate{Year: 2024, Month: 1, Day: 1}
	stop := daterange.CalendarDate{Year: 2024, Month: 2, Day: 1}

	cfg.Start = &start
	if got := cfg.CacheKey(); got != "events:octocat/hello:2024/01/01..*" {
		t.Fatalf("start-only key = %q", got)
	}

	cfg.Stop = &stop
	if got := cfg.CacheKey(); got != "events:octocat/hello:2024/01/01..2024/02/01" {
		t.Fatalf("ranged key = %q", got)
	}

	cfg.Start = nil
	if got := cfg.CacheKey(); got != "events:octocat/hello:*..2024/02/01" {
		t.Fatalf("stop-only key = %q", got)
	}
}

func TestFromFields(t *testing.T) {
	cfg, warns := FromFields(map[string]string{
		"user":   "octocat",
		"repo":   "hello",
		"limit":  "25",
		"debug":  "true",
		"start":  "2024/01/01",
		"stop":   "2024/02/01",
		"flavor": "spicy",
	})
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if cfg.Owner != "octocat" || cfg.Repo != "hello" || cfg.Limit != 25 || !cfg.Debug {
		t.Fatalf("config wrong: %+v", cfg)
	}
	if cfg.Start == nil || cfg.Start.String() != "2024/01/01" {
		t.Fatalf("start wrong: %+v", cfg.Start)
	}
	if cfg.Stop == nil || cfg.Stop.String() != "2024/02/01" {
		t.Fatalf("stop wrong: %+v", cfg.Stop)
	}
	if cfg.Extra["flavor"] != "spicy" {
		t.Fatalf("unknown key should land in Extra: %+v", cfg.Extra)
	}
}

func TestFromFieldsMalformedValuesWarnAndSkip(t *testing.T) {
	cfg, warns := FromFields(map[string]string{
		"user":  "octocat",
		"repo":  "hello",
		"limit": "banana",
		"start": "01-01-2024",
	})
	if len(warns) != 2 {
		t.Fatalf("want 2 warnings, got %v", warns)
	}
	if cfg.Limit != DefaultLimit {
		t.Fatalf("bad limit should fall back to default, got %d", cfg.Limit)
	}
	if cfg.Start != nil {
		t.Fatalf("bad start should be skipped, got %v", cfg.Start)
	}
	// the rest of the config still parses
	if cfg.Owner != "octocat" || cfg.Repo != "hello" {
		t.Fatalf("valid fields lost: %+v", cfg)
	}
}
