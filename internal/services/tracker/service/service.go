// Package service implements the activity fetch pipeline and its cache policy
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gittracker/internal/adapters/github"
	"gittracker/internal/core/daterange"
	"gittracker/internal/core/render"
	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"
	"gittracker/internal/services/tracker/domain"
)

const (
	noEventsText = "_no events found in specified range_"
	lowQuotaText = "> ⚠️ GitHub API quota is almost exhausted, results may go stale"
)

// Service orchestrates cache lookup, remote fetch, filtering, and rendering.
// It satisfies domain.FetcherPort and never returns an error: every failure
// path ends in a diagnostic text block
type Service struct {
	cache  *Cache
	source domain.EventSource
	links  render.Links
	log    logger.Logger
	now    func() time.Time
}

// New constructs the fetcher service
func New(cache *Cache, source domain.EventSource, links render.Links) *Service {
	return &Service{
		cache:  cache,
		source: source,
		links:  links,
		log:    *logger.Named("tracker"),
		now:    time.Now,
	}
}

// Run renders one configured query into a markdown block
func (s *Service) Run(ctx context.Context, cfg domain.TrackerConfig) string {
	if cfg.Limit <= 0 {
		cfg.Limit = domain.DefaultLimit
	}
	header := render.Header(cfg.Owner, cfg.Repo, cfg.Start, cfg.Stop)

	if err := cfg.Validate(); err != nil {
		return header + "\n\n> error: " + err.Error()
	}

	log := logger.C(ctx)
	key := cfg.CacheKey()

	entry, state := s.cache.Lookup(ctx, key)
	if state == Hit {
		if cfg.Debug {
			log.Debug().Str("key", key).Bool("rate_limited", entry.RateLimited).Msg("cache hit, skipping network")
		}
		return entry.RenderedText
	}

	etag := ""
	if state == Revalidate {
		etag = entry.ETag
		if cfg.Debug {
			log.Debug().Str("key", key).Str("etag", etag).Msg("cache stale, revalidating")
		}
	}

	events, meta, err := s.source.ListRepoEvents(ctx, cfg.Owner, cfg.Repo, cfg.Limit, etag)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
			return s.rateLimited(ctx, key, header, meta, cfg.Debug)
		}
		// a failed revalidation discards the stale entry; failures themselves
		// are never cached
		if state == Revalidate {
			_ = s.cache.Invalidate(ctx, key)
		}
		if cfg.Debug {
			log.Debug().Err(err).Str("key", key).Msg("remote fetch failed")
		}
		return header + "\n\n> error: " + err.Error()
	}

	if meta.NotModified {
		if cfg.Debug {
			log.Debug().Str("key", key).Msg("feed not modified, entry preserved")
		}
		if terr := s.cache.Touch(ctx, entry); terr != nil {
			log.Warn().Err(terr).Str("key", key).Msg("cache touch failed")
		}
		return entry.RenderedText
	}

	if cfg.Ranged() {
		iv := cfg.Interval()
		before := len(events)
		events = daterange.Filter(events, func(e github.Event) time.Time { return e.CreatedAt }, iv)
		if cfg.Debug {
			log.Debug().Int("before", before).Int("after", len(events)).
				Time("lower", iv.Lower).Time("upper", iv.Upper).Msg("date filter applied")
		}
	}

	text := s.renderAll(header, events, meta, cfg.Debug)
	if serr := s.cache.Store(ctx, key, text, meta.ETag, false, time.Time{}); serr != nil {
		log.Warn().Err(serr).Str("key", key).Msg("cache store failed")
	}
	return text
}

// rateLimited caches a placeholder carrying the reset time so repeated
// requests before the reset reuse the message instead of re-querying
func (s *Service) rateLimited(ctx context.Context, key, header string, meta github.Meta, debug bool) string {
	resetAt := meta.Rate.ResetAt
	when := "shortly"
	if !resetAt.IsZero() {
		when = resetAt.Format("15:04:05 MST")
	}
	text := fmt.Sprintf("%s\n\n> ⛔ GitHub API rate limit exceeded, retry after %s", header, when)

	if resetAt.IsZero() {
		// no disclosed reset, give the quota a minute before re-querying
		resetAt = s.now().Add(time.Minute)
	}
	if err := s.cache.Store(ctx, key, text, "", true, resetAt); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
	if debug {
		logger.C(ctx).Debug().Time("reset_at", resetAt).Str("key", key).Msg("rate limit placeholder cached")
	}
	return text
}

// renderAll formats every surviving event under the header.
// An empty result is still a successful, cacheable answer
func (s *Service) renderAll(header string, events []github.Event, meta github.Meta, debug bool) string {
	var b strings.Builder
	b.WriteString(header)
	if meta.Rate.LowQuota() {
		b.WriteString("\n\n" + lowQuotaText)
	}

	if len(events) == 0 {
		b.WriteString("\n\n" + noEventsText)
		return b.String()
	}

	f := render.NewFormatter(s.links, debug)
	rendered := 0
	b.WriteString("\n")
	for _, e := range events {
		line, ok := f.Format(e)
		if !ok {
			continue
		}
		b.WriteString("\n" + line)
		rendered++
	}
	if rendered == 0 {
		return header + "\n\n" + noEventsText
	}
	return b.String()
}
