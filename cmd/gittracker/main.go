package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"gittracker/internal/modkit"
	"gittracker/internal/modkit/module"
	"gittracker/internal/platform/config"
	"gittracker/internal/platform/kv"
	"gittracker/internal/platform/logger"

	trackermod "gittracker/internal/services/tracker/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	// Flags
	var (
		fIn      = flag.String("in", "", "input document path (- for stdin)")
		fOut     = flag.String("out", "", "output path (default: rewrite -in in place; - for stdout)")
		fBackend = flag.String("backend", kv.BackendSQLite, "cache backend: memory | sqlite | postgres")
		fCache   = flag.String("cache", ".gittracker.db", "sqlite cache file (sqlite backend)")
		fTTL     = flag.String("ttl", "", "cache freshness window, e.g. 15m (overrides TRACKER_CACHE_TTL)")
		fToken   = flag.String("token", "", "GitHub API token (overrides TRACKER_TOKEN)")
		fDebug   = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	if *fDebug {
		mustSetEnv("LOG_LEVEL", "debug")
	}

	root := config.New()
	l := logger.Get()

	if *fIn == "" {
		l.Panic().Msg("-in is required (path to document, or - for stdin)")
	}

	// Export flag overrides so the module reads them via FromConfig
	mustSetEnv("TRACKER_CACHE_TTL", *fTTL)
	mustSetEnv("TRACKER_TOKEN", *fToken)

	ctx := context.Background()

	store, err := kv.Open(ctx, kv.Config{
		Backend:  *fBackend,
		Path:     *fCache,
		URL:      root.MayString("TRACKER_PG_URL", ""),
		MaxConns: int32(root.MayInt("TRACKER_PG_MAX_CONNS", 2)),
	}, kv.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("kv.Open failed")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close cache store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		KV:  store,
	}

	tm, err := trackermod.New(ctx, deps, trackermod.FromConfig(root))
	if err != nil {
		l.Panic().Err(err).Msg("tracker module init failed")
	}
	module.Register(tm.Name(), tm.Ports())

	ports := module.MustPortsOf[trackermod.Ports](tm)

	doc, err := readDocument(*fIn)
	if err != nil {
		l.Panic().Err(err).Str("path", *fIn).Msg("failed to read document")
	}

	out := ports.Document.Process(ctx, doc)

	if err := writeDocument(*fIn, *fOut, out); err != nil {
		l.Panic().Err(err).Msg("failed to write document")
	}
}

func readDocument(in string) (string, error) {
	if in == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeDocument(in, out, content string) error {
	switch out {
	case "-":
		_, err := fmt.Print(content)
		return err
	case "":
		if in == "-" {
			_, err := fmt.Print(content)
			return err
		}
		return os.WriteFile(in, []byte(content), 0o644)
	default:
		return os.WriteFile(out, []byte(content), 0o644)
	}
}
