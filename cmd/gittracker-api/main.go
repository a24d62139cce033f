package main

import (
	"context"

	"gittracker/internal/modkit"
	"gittracker/internal/modkit/module"
	"gittracker/internal/platform/config"
	"gittracker/internal/platform/kv"
	"gittracker/internal/platform/logger"
	phttp "gittracker/internal/platform/net/http"
	"gittracker/internal/platform/net/middleware"

	trackerhttp "gittracker/internal/services/tracker/http"
	trackermod "gittracker/internal/services/tracker/module"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("API_")
	kvCfg := root.Prefix("TRACKER_KV_")

	// bring up logging early
	l := logger.Get()

	ctx := context.Background()

	store, err := kv.Open(ctx, kv.Config{
		Backend:  kvCfg.MayEnum("BACKEND", kv.BackendMemory, kv.BackendMemory, kv.BackendSQLite, kv.BackendPostgres),
		Path:     kvCfg.MayString("PATH", "gittracker.db"),
		URL:      kvCfg.MayString("URL", ""),
		MaxConns: int32(kvCfg.MayInt("MAX_CONNS", 4)),
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

	// http server (reads API_PORT)
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(middleware.RecoverJSON())
		m.Use(middleware.AccessLog())
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{apiCfg.MayString("CORS_ORIGIN", "*")},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	})

	trackerhttp.NewHandlers(ports.Fetcher, ports.Document).Mount(srv.Router())

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
