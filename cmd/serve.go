package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/gleague-scout/internal/api"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/logger"
	"github.com/pable/gleague-scout/internal/model"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

var (
	serveAddr string
	serveWarm bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scouting engines as a JSON API",
	Long: `Start an HTTP server exposing:
  GET /healthz
  GET /metrics
  GET /api/seasons?kind=players
  GET /api/players?season=&q=&pos=&team=&status=&category=&range=stat:lo-hi&sort=&order=&limit=
  GET /api/players/{name}/profile?season=&group=pos
  GET /api/players/{name}/games?season=&team=&from=&to=&last=&metric=&window=
  GET /api/rankings?stat=&kind=&season=&competition=&order=&limit=
  GET /api/teams?season=&competition=&team=
  GET /api/targets?season=&category=...

Populations are cached for cache_ttl; when the source fails an expired
snapshot is served with "stale": true.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", true, "fetch every dataset once before listening")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.InitJSON(os.Stderr)
	log := logger.Named("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeFn, err := openSource(ctx, "")
	if err != nil {
		return err
	}
	defer closeFn()
	cache := loader.NewCached(src, cfg.CacheTTL, loader.WithLogger(logger.Named("cache")))

	if serveWarm {
		for _, kind := range []model.Kind{model.KindPlayers, model.KindTargets, model.KindTeams, model.KindGames} {
			snap, err := cache.Snapshot(ctx, model.Scope{Kind: kind})
			if err != nil {
				log.Warn(ctx, "warm-up failed", logger.String("kind", kind.String()), logger.Error(err))
				continue
			}
			log.Info(ctx, "warmed", logger.String("kind", kind.String()), logger.Int("rows", snap.Population.Len()))
		}
	}

	opts, err := profileOptions()
	if err != nil {
		return err
	}
	server := api.NewServer(cache, api.Options{
		Profile:  opts,
		Classify: cfg.ClassifyConfig(),
		Logger:   logger.Named("api"),
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", addr), logger.String("source", src.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
