package service

import (
	"context"
	"sync"

	"gittracker/internal/core/directive"
	"gittracker/internal/platform/logger"
	"gittracker/internal/services/tracker/domain"

	"github.com/google/uuid"
)

// Document fans one fetch out per directive block and splices the results
// back in by identity token, never by position. Two identical directives
// both get replaced. Same-key fetches are not deduplicated; both may fetch
// and overwrite, which wastes a call but cannot corrupt the store
type Document struct {
	fetcher domain.FetcherPort
	log     logger.Logger
}

// NewDocument constructs a document processor over the given fetcher
func NewDocument(fetcher domain.FetcherPort) *Document {
	return &Document{fetcher: fetcher, log: *logger.Named("document")}
}

// Process replaces every githubtracker block in doc with its rendered feed
func (d *Document) Process(ctx context.Context, doc string) string {
	blocks := directive.Scan(doc)
	if len(blocks) == 0 {
		return doc
	}
	d.log.Debug().Int("directives", len(blocks)).Msg("processing document")

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[uuid.UUID]string, len(blocks))
	)
	for _, b := range blocks {
		wg.Add(1)
		go func(b directive.Block) {
			defer wg.Done()
			cctx := logger.WithDirective(ctx, b.ID.String())

			cfg, warns := domain.FromFields(b.Fields)
			for _, w := range warns {
				logger.C(cctx).Warn().Str("warning", w).Msg("directive field skipped")
			}

			text := d.fetcher.Run(cctx, cfg)

			mu.Lock()
			results[b.ID] = text
			mu.Unlock()
		}(b)
	}
	wg.Wait()

	return directive.Replace(doc, blocks, results)
}
