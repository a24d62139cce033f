package service

import (
	"context"
	"encoding/json"
	"time"

	"gittracker/internal/platform/kv"
	"gittracker/internal/platform/logger"
)

// schemaVersion tags the persisted entry shape. Bumping it wipes the store
// on first use so entries written by an incompatible version never survive
const (
	schemaVersion = "2"
	schemaKey     = "tracker:schema"
)

// Entry is one cached rendered result, exclusively owned by the cache
type Entry struct {
	Key          string    `json:"key"`
	RenderedText string    `json:"rendered_text"`
	StoredAt     time.Time `json:"stored_at"`
	ETag         string    `json:"etag,omitempty"`
	RateLimited  bool      `json:"rate_limited,omitempty"`
	ResetAt      time.Time `json:"reset_at,omitzero"`
}

// Freshness is the outcome of a cache lookup
type Freshness int

const (
	// Miss means no usable entry exists, fetch fresh
	Miss Freshness = iota

	// Hit means the entry is served as-is, no network needed
	Hit

	// Revalidate means the entry aged past its TTL but carries a
	// revalidation token; the caller must ask the remote source whether
	// it changed before discarding
	Revalidate
)

// Cache layers three invalidation strategies over the KV store:
// a rate-limit override, a time-to-live, and conditional revalidation
type Cache struct {
	store kv.Store
	ttl   time.Duration
	log   logger.Logger
	now   func() time.Time
}

// NewCache opens the cache over store. On first use with a different schema
// version the whole store is purged before the marker is written
func NewCache(ctx context.Context, store kv.Store, ttl time.Duration) (*Cache, error) {
	c := &Cache{
		store: store,
		ttl:   ttl,
		log:   *logger.Named("cache"),
		now:   time.Now,
	}

	v, ok, err := store.Get(ctx, schemaKey)
	if err != nil {
		return nil, err
	}
	if !ok || string(v) != schemaVersion {
		c.log.Info().Str("found", string(v)).Str("want", schemaVersion).Msg("cache schema mismatch, resetting store")
		if err := store.Purge(ctx); err != nil {
			return nil, err
		}
		if err := store.Set(ctx, schemaKey, []byte(schemaVersion)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Lookup decides whether the stored entry for key is still usable.
// Order matters: a rate-limited entry before its reset beats every
// freshness check, because refetching would only burn an exhausted quota
func (c *Cache) Lookup(ctx context.Context, key string) (Entry, Freshness) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		return Entry{}, Miss
	}
	if !ok {
		return Entry{}, Miss
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		_ = c.store.Delete(ctx, key)
		return Entry{}, Miss
	}

	now := c.now()

	if e.RateLimited {
		if now.Before(e.ResetAt) {
			return e, Hit
		}
		// the reset time passed, the stale flag must not survive
		_ = c.store.Delete(ctx, key)
		return Entry{}, Miss
	}

	if now.Sub(e.StoredAt) <= c.ttl {
		return e, Hit
	}

	if e.ETag != "" {
		return e, Revalidate
	}

	return Entry{}, Miss
}

// Store unconditionally overwrites any existing entry for key
func (c *Cache) Store(ctx context.Context, key, renderedText, etag string, rateLimited bool, resetAt time.Time) error {
	e := Entry{
		Key:          key,
		RenderedText: renderedText,
		StoredAt:     c.now(),
		ETag:         etag,
		RateLimited:  rateLimited,
		ResetAt:      resetAt,
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw)
}

// Touch preserves an entry whose revalidation came back "not modified",
// resetting its age so the TTL clock starts over
func (c *Cache) Touch(ctx context.Context, e Entry) error {
	return c.Store(ctx, e.Key, e.RenderedText, e.ETag, false, time.Time{})
}

// Invalidate removes the entry for key
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}
