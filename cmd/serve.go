package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/api/shows"
	"github.com/Vasu1712/scenyx-showtime/internal/auth"
	"github.com/Vasu1712/scenyx-showtime/internal/config"
	"github.com/Vasu1712/scenyx-showtime/internal/middleware"
	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"github.com/Vasu1712/scenyx-showtime/internal/storage/memory"
	"github.com/Vasu1712/scenyx-showtime/internal/storage/valkey"
	"github.com/Vasu1712/scenyx-showtime/internal/ws"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the show editing HTTP service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Sugar()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("SHOWTIME_JWT_SECRET not set, tokens will not survive a restart")
	}

	saver, lister, closeSink, err := openSaveSink(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	handler := &shows.ShowHandler{
		Sessions:  memory.NewSessionStore(saver, log),
		Snapshots: lister,
		Tokens:    auth.NewIssuer(secret, cfg.TokenTTL, log),
		Hub:       hub,
		Log:       log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	shows.RegisterShowRoutes(r, handler)

	// CORS wraps the router rather than r.Use so preflights reach it even
	// though no route matches OPTIONS.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.Logging(log)(middleware.CORS(cfg.CORSOrigin, log)(r)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", cfg.Addr, "saveSink", cfg.SaveSink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("graceful shutdown failed", "err", err)
		_ = srv.Close()
	}
	log.Info("server stopped")
	return nil
}

// openSaveSink picks where saved shows go. The log sink keeps nothing, so it
// has no lister.
func openSaveSink(cfg config.Config, log *zap.SugaredLogger) (show.Saver, shows.SnapshotLister, func(), error) {
	switch cfg.SaveSink {
	case config.SinkLog:
		return nil, nil, func() {}, nil
	case config.SinkValkey:
		store, err := valkey.NewSnapshotStore(cfg.ValkeyAddr, cfg.ValkeyPrefix, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	default:
		store := memory.NewSnapshotStore()
		return store, store, func() {}, nil
	}
}
