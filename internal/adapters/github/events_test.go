package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	perr "gittracker/internal/platform/errors"
)

const eventsBody = `[
  {
    "id": "101",
    "type": "PushEvent",
    "actor": {"id": 1, "login": "octocat"},
    "repo": {"id": 2, "name": "octocat/hello", "url": "https://api.github.com/repos/octocat/hello"},
    "payload": {"ref": "refs/heads/main", "commits": [{"sha": "abc", "message": "hi"}]},
    "created_at": "2024-06-01T12:00:00Z"
  }
]`

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, Token: "sekret"}), srv
}

func TestListRepoEvents(t *testing.T) {
	var gotPath, gotAuth, gotUA string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("ETag", `W/"e1"`)
		w.Header().Set("X-RateLimit-Remaining", "4999")
		_, _ = w.Write([]byte(eventsBody))
	})

	events, meta, err := c.ListRepoEvents(context.Background(), "octocat", "hello", 30, "")
	if err != nil {
		t.Fatalf("ListRepoEvents: %v", err)
	}
	if gotPath != "/repos/octocat/hello/events?per_page=30" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "token sekret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotUA == "" {
		t.Fatalf("user agent must be set")
	}
	if len(events) != 1 || events[0].Kind() != KindPush || events[0].Actor.Login != "octocat" {
		t.Fatalf("events decoded wrong: %+v", events)
	}
	if !events[0].CreatedAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at decoded wrong: %v", events[0].CreatedAt)
	}
	if meta.ETag != `W/"e1"` || meta.Rate.Remaining != 4999 || meta.NotModified {
		t.Fatalf("meta wrong: %+v", meta)
	}
}

func TestListRepoEventsNotModified(t *testing.T) {
	var gotMatch string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMatch = r.Header.Get("If-None-Match")
		w.WriteHeader(http.StatusNotModified)
	})

	events, meta, err := c.ListRepoEvents(context.Background(), "octocat", "hello", 30, `W/"e1"`)
	if err != nil {
		t.Fatalf("ListRepoEvents: %v", err)
	}
	if gotMatch != `W/"e1"` {
		t.Fatalf("If-None-Match = %q", gotMatch)
	}
	if !meta.NotModified || events != nil {
		t.Fatalf("want not-modified with nil events, got %+v %+v", meta, events)
	}
}

func TestListRepoEventsRateLimited(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "API rate limit exceeded"}`))
	})

	_, meta, err := c.ListRepoEvents(context.Background(), "octocat", "hello", 30, "")
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("want TooManyRequests, got %v", err)
	}
	if !meta.Rate.Limited || meta.Rate.Remaining != 0 {
		t.Fatalf("rate info wrong: %+v", meta.Rate)
	}
	if !meta.Rate.ResetAt.Equal(time.Unix(reset, 0).UTC()) {
		t.Fatalf("reset wrong: %v", meta.Rate.ResetAt)
	}
}

func TestListRepoEventsForbiddenWithQuotaIsNotRateLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.WriteHeader(http.StatusForbidden)
	})

	_, meta, err := c.ListRepoEvents(context.Background(), "octocat", "hello", 30, "")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("plain 403 with quota left is unavailable, got %v", err)
	}
	if meta.Rate.Limited {
		t.Fatalf("plain 403 must not count as limited: %+v", meta.Rate)
	}
}

func TestListRepoEventsServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	})

	_, _, err := c.ListRepoEvents(context.Background(), "octocat", "hello", 30, "")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want Unavailable, got %v", err)
	}
}

func TestListRepoEventsConnectionRefused(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, _, err := c.ListRepoEvents(context.Background(), "octocat", "hello", 30, "")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want Unavailable on dial failure, got %v", err)
	}
}
