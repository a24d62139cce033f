// Package module wires the tracker service vertical
package module

import (
	"context"

	"gittracker/internal/adapters/github"
	"gittracker/internal/core/render"
	"gittracker/internal/modkit"
	"gittracker/internal/services/tracker/domain"
	"gittracker/internal/services/tracker/service"
)

// Ports exposed by the tracker module
type Ports struct {
	Fetcher  domain.FetcherPort
	Document domain.DocumentPort
}

// Module composes the feed client, the freshness cache, and the renderers
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the tracker module; ctx covers the one-time cache schema check
func New(ctx context.Context, deps modkit.Deps, opts Options) (*Module, error) {
	client := github.NewClient(github.Options{
		BaseURL: opts.APIHost,
		Token:   opts.Token,
		Timeout: opts.Timeout,
	})

	cache, err := service.NewCache(ctx, deps.KV, opts.TTL)
	if err != nil {
		return nil, err
	}

	svc := service.New(cache, client, render.Links{
		APIHost:    client.BaseURL(),
		ViewerHost: opts.ViewerHost,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Fetcher:  svc,
		Document: service.NewDocument(svc),
	}
	return m, nil
}

// Name satisfies module.Module
func (m *Module) Name() string { return "tracker" }

// Ports satisfies module.Module
func (m *Module) Ports() any { return m.ports }
