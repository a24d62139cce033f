// Package http exposes the tracker ports over REST
package http

import (
	"io"
	stdhttp "net/http"
	"strconv"

	"gittracker/internal/core/daterange"
	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"
	phttp "gittracker/internal/platform/net/http"
	"gittracker/internal/services/tracker/domain"

	"github.com/go-chi/chi/v5"
)

// maxDocumentBytes bounds the render endpoint request body
const maxDocumentBytes = 1 << 20

// Handlers serves the tracker endpoints
type Handlers struct {
	fetcher  domain.FetcherPort
	document domain.DocumentPort
	log      *logger.Logger
}

// NewHandlers builds the handler set from the module ports
func NewHandlers(fetcher domain.FetcherPort, document domain.DocumentPort) *Handlers {
	return &Handlers{
		fetcher:  fetcher,
		document: document,
		log:      logger.Named("tracker.http"),
	}
}

// Mount attaches the tracker routes to the router
func (h *Handlers) Mount(r phttp.Router) {
	r.Get("/health", h.Health)
	r.Get("/repos/{owner}/{repo}/feed", h.Feed)
	r.Post("/render", h.Render)
}

// Health is the liveness probe
func (h *Handlers) Health(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	phttp.RespondOK(w, map[string]string{"status": "ok"})
}

// feedResponse is the Feed endpoint payload
type feedResponse struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Markdown string `json:"markdown"`
}

// Feed renders one repository feed query as markdown.
// Query params: limit, start, stop (yyyy/mm/dd), debug
func (h *Handlers) Feed(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	cfg := domain.NewConfig(chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			phttp.RespondError(w, perr.InvalidArgf("limit %q is not a positive integer", v))
			return
		}
		cfg.Limit = n
	}
	if v := q.Get("debug"); v != "" {
		cfg.Debug = v == "1" || v == "true"
	}
	if v := q.Get("start"); v != "" {
		d, err := daterange.Parse(v)
		if err != nil {
			phttp.RespondError(w, perr.WithField(err, "start"))
			return
		}
		cfg.Start = &d
	}
	if v := q.Get("stop"); v != "" {
		d, err := daterange.Parse(v)
		if err != nil {
			phttp.RespondError(w, perr.WithField(err, "stop"))
			return
		}
		cfg.Stop = &d
	}

	if err := cfg.Validate(); err != nil {
		phttp.RespondError(w, err)
		return
	}

	md := h.fetcher.Run(r.Context(), cfg)
	phttp.RespondOK(w, feedResponse{Owner: cfg.Owner, Repo: cfg.Repo, Markdown: md})
}

// Render processes a whole document: every directive block in the body
// is replaced with its rendered feed. Body is text/markdown, response
// carries the processed document
func (h *Handlers) Render(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		phttp.RespondError(w, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read body"))
		return
	}
	if len(body) == 0 {
		phttp.RespondError(w, perr.InvalidArgf("empty document"))
		return
	}

	h.log.Debug().Int("bytes", len(body)).Msg("render document")
	out := h.document.Process(r.Context(), string(body))
	phttp.RespondOK(w, map[string]string{"document": out})
}
