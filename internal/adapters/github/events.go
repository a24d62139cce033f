package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	perr "gittracker/internal/platform/errors"
)

// Meta is the response metadata the cache layer decides on
type Meta struct {
	Status      int
	ETag        string
	NotModified bool
	Rate        RateInfo
}

// ListRepoEvents fetches up to limit most-recent events for owner/repo.
// etag is optional; a matching feed yields Meta.NotModified with nil events.
// A rate-exhausted response yields a TooManyRequests error with Meta.Rate set
func (c *Client) ListRepoEvents(ctx context.Context, owner, repo string, limit int, etag string) ([]Event, Meta, error) {
	path := fmt.Sprintf("/repos/%s/%s/events?per_page=%d", owner, repo, limit)

	resp, err := c.do(ctx, path, etag)
	if err != nil {
		return nil, Meta{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	meta := Meta{
		Status: resp.StatusCode,
		ETag:   resp.Header.Get("ETag"),
		Rate:   InspectRate(resp.StatusCode, resp.Header),
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		meta.NotModified = true
		return nil, meta, nil

	case meta.Rate.Limited:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, meta, perr.RateLimitedf("github rate limited until %s", meta.Rate.ResetAt.Format("15:04:05 MST"))

	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, meta, perr.Newf(perr.ErrorCodeUnavailable, "github unexpected status %d body %s", resp.StatusCode, string(body))
	}

	var events []Event
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, meta, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github read body failed")
	}
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, meta, perr.Wrapf(err, perr.ErrorCodeUnknown, "github decode events failed")
	}
	return events, meta, nil
}
