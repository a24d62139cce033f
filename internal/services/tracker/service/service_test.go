package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gittracker/internal/adapters/github"
	"gittracker/internal/core/daterange"
	"gittracker/internal/core/render"
	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/testkit"
	"gittracker/internal/services/tracker/domain"
)

// stubSource scripts the remote feed for service tests
type stubSource struct {
	mu      sync.Mutex
	calls   int
	lastTag string

	events []github.Event
	meta   github.Meta
	err    error
}

func (s *stubSource) ListRepoEvents(_ context.Context, _, _ string, _ int, etag string) ([]github.Event, github.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastTag = etag
	return s.events, s.meta, s.err
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func pushEvent(t *testing.T, id string, at time.Time) github.Event {
	t.Helper()
	raw, err := json.Marshal(github.PushPayload{
		Ref:     "refs/heads/main",
		Commits: []github.Commit{{SHA: "deadbeefcafe", Message: "change " + id}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return github.Event{
		ID:    id,
		Type:  "PushEvent",
		Actor: github.Actor{Login: "octocat"},
		Repo: github.RepoRef{
			Name: "octocat/hello",
			URL:  "https://api.github.com/repos/octocat/hello",
		},
		Payload:   raw,
		CreatedAt: at,
	}
}

func newTestService(t *testing.T, src *stubSource, ttl time.Duration) *Service {
	t.Helper()
	cache, _ := newTestCache(t, ttl)
	return New(cache, src, render.DefaultLinks())
}

func TestRunRendersAndCaches(t *testing.T) {
	src := &stubSource{
		events: []github.Event{pushEvent(t, "1", time.Now().UTC())},
		meta:   github.Meta{Status: 200, ETag: `W/"e1"`, Rate: github.RateInfo{Remaining: 4999}},
	}
	svc := newTestService(t, src, time.Minute)
	cfg := domain.NewConfig("octocat", "hello")

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, "### Activity for octocat/hello (latest events)")
	testkit.MustContain(t, out, "**octocat** pushed 1 commit to `main`")

	// second call is served from cache, no network
	out2 := svc.Run(context.Background(), cfg)
	if out2 != out {
		t.Fatalf("cached text differs:\n%q\n%q", out, out2)
	}
	if src.callCount() != 1 {
		t.Fatalf("cache hit should skip the network, got %d calls", src.callCount())
	}
}

func TestRunInvalidConfigNoNetwork(t *testing.T) {
	src := &stubSource{}
	svc := newTestService(t, src, time.Minute)

	out := svc.Run(context.Background(), domain.NewConfig("octocat", ""))
	testkit.MustContain(t, out, "> error:")
	if src.callCount() != 0 {
		t.Fatalf("invalid config must not reach the network")
	}
}

func TestRunRemoteErrorNotCached(t *testing.T) {
	src := &stubSource{err: perr.Unavailablef("github unexpected status 500")}
	svc := newTestService(t, src, time.Minute)
	cfg := domain.NewConfig("octocat", "hello")

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, "> error:")
	testkit.MustContain(t, out, "github unexpected status 500")

	// failures are never cached, the next call fetches again
	_ = svc.Run(context.Background(), cfg)
	if src.callCount() != 2 {
		t.Fatalf("errors must not be cached, got %d calls", src.callCount())
	}
}

func TestRunRateLimitedCachesPlaceholder(t *testing.T) {
	resetAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	src := &stubSource{
		err:  perr.RateLimitedf("github rate limited"),
		meta: github.Meta{Status: 403, Rate: github.RateInfo{Limited: true, Remaining: 0, ResetAt: resetAt}},
	}
	svc := newTestService(t, src, time.Minute)
	cfg := domain.NewConfig("octocat", "hello")

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, "⛔ GitHub API rate limit exceeded, retry after "+resetAt.Format("15:04:05 MST"))

	// before the reset the placeholder rides the cache
	out2 := svc.Run(context.Background(), cfg)
	if out2 != out {
		t.Fatalf("placeholder should be reused:\n%q\n%q", out, out2)
	}
	if src.callCount() != 1 {
		t.Fatalf("rate-limited entry must suppress refetching, got %d calls", src.callCount())
	}
}

func TestRunRateLimitedWithoutReset(t *testing.T) {
	src := &stubSource{
		err:  perr.RateLimitedf("github rate limited"),
		meta: github.Meta{Status: 403, Rate: github.RateInfo{Limited: true, Remaining: 0}},
	}
	svc := newTestService(t, src, time.Minute)

	out := svc.Run(context.Background(), domain.NewConfig("octocat", "hello"))
	testkit.MustContain(t, out, "retry after shortly")
}

func TestRunEmptyFeedCached(t *testing.T) {
	src := &stubSource{meta: github.Meta{Status: 200, ETag: `W/"e2"`, Rate: github.RateInfo{Remaining: 100}}}
	svc := newTestService(t, src, time.Minute)
	cfg := domain.NewConfig("octocat", "hello")

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, noEventsText)

	_ = svc.Run(context.Background(), cfg)
	if src.callCount() != 1 {
		t.Fatalf("an empty result is still a cacheable answer, got %d calls", src.callCount())
	}
}

func TestRunLowQuotaWarning(t *testing.T) {
	src := &stubSource{
		events: []github.Event{pushEvent(t, "1", time.Now().UTC())},
		meta:   github.Meta{Status: 200, Rate: github.RateInfo{Remaining: 3}},
	}
	svc := newTestService(t, src, time.Minute)

	out := svc.Run(context.Background(), domain.NewConfig("octocat", "hello"))
	testkit.MustContain(t, out, lowQuotaText)
	testkit.MustContain(t, out, "pushed 1 commit")
}

func TestRunRevalidateNotModified(t *testing.T) {
	src := &stubSource{
		events: []github.Event{pushEvent(t, "1", time.Now().UTC())},
		meta:   github.Meta{Status: 200, ETag: `W/"e3"`, Rate: github.RateInfo{Remaining: 100}},
	}
	cache, _ := newTestCache(t, time.Minute)
	svc := New(cache, src, render.DefaultLinks())
	cfg := domain.NewConfig("octocat", "hello")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }
	first := svc.Run(context.Background(), cfg)

	// entry aged out; the remote now reports the feed unchanged
	cache.now = func() time.Time { return base.Add(time.Hour) }
	src.mu.Lock()
	src.events, src.meta, src.err = nil, github.Meta{Status: 304, NotModified: true}, nil
	src.mu.Unlock()

	second := svc.Run(context.Background(), cfg)
	if second != first {
		t.Fatalf("not-modified must preserve the cached text:\n%q\n%q", first, second)
	}
	if src.callCount() != 2 {
		t.Fatalf("revalidation needs exactly one extra call, got %d", src.callCount())
	}
	src.mu.Lock()
	tag := src.lastTag
	src.mu.Unlock()
	if tag != `W/"e3"` {
		t.Fatalf("revalidation must carry the stored etag, got %q", tag)
	}

	// the touch restarted the ttl clock
	if _, state := cache.Lookup(context.Background(), cfg.CacheKey()); state != Hit {
		t.Fatalf("touched entry should be fresh, got %v", state)
	}
}

func TestRunFailedRevalidationDropsStaleEntry(t *testing.T) {
	src := &stubSource{
		events: []github.Event{pushEvent(t, "1", time.Now().UTC())},
		meta:   github.Meta{Status: 200, ETag: `W/"e4"`, Rate: github.RateInfo{Remaining: 100}},
	}
	cache, store := newTestCache(t, time.Minute)
	svc := New(cache, src, render.DefaultLinks())
	cfg := domain.NewConfig("octocat", "hello")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }
	_ = svc.Run(context.Background(), cfg)

	cache.now = func() time.Time { return base.Add(time.Hour) }
	src.mu.Lock()
	src.events, src.meta, src.err = nil, github.Meta{}, perr.Unavailablef("boom")
	src.mu.Unlock()

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, "> error:")
	if _, ok, _ := store.Get(context.Background(), cfg.CacheKey()); ok {
		t.Fatalf("failed revalidation must drop the stale entry")
	}
}

func TestRunDateRangeFilter(t *testing.T) {
	inRange := pushEvent(t, "in", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	outRange := pushEvent(t, "out", time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))
	src := &stubSource{
		events: []github.Event{inRange, outRange},
		meta:   github.Meta{Status: 200, Rate: github.RateInfo{Remaining: 100}},
	}
	svc := newTestService(t, src, time.Minute)

	start := daterange.CalendarDate{Year: 2024, Month: 3, Day: 1}
	stop := daterange.CalendarDate{Year: 2024, Month: 3, Day: 2}
	cfg := domain.NewConfig("octocat", "hello")
	cfg.Start, cfg.Stop = &start, &stop

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, "### Activity for octocat/hello (2024/03/01 to 2024/03/02)")
	testkit.MustContain(t, out, "change in")
	testkit.MustNotContain(t, out, "change out")
}

func TestRunAllEventsFilteredOut(t *testing.T) {
	src := &stubSource{
		events: []github.Event{pushEvent(t, "1", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))},
		meta:   github.Meta{Status: 200, Rate: github.RateInfo{Remaining: 100}},
	}
	svc := newTestService(t, src, time.Minute)

	start := daterange.CalendarDate{Year: 2024, Month: 3, Day: 1}
	cfg := domain.NewConfig("octocat", "hello")
	cfg.Start = &start

	out := svc.Run(context.Background(), cfg)
	testkit.MustContain(t, out, noEventsText)
}
