package domain

import (
	"context"

	"gittracker/internal/adapters/github"
)

// FetcherPort renders one configured feed query into a markdown block.
// It never fails; every failure path terminates in diagnostic text
type FetcherPort interface {
	Run(ctx context.Context, cfg TrackerConfig) string
}

// DocumentPort replaces every directive block in a host document with
// its rendered feed, concurrently and matched by identity
type DocumentPort interface {
	Process(ctx context.Context, doc string) string
}

// EventSource is the remote feed seam the fetcher pulls from
type EventSource interface {
	ListRepoEvents(ctx context.Context, owner, repo string, limit int, etag string) ([]github.Event, github.Meta, error)
}
