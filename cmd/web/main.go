package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-web/internal/config"
	"storefront-web/internal/db"
	"storefront-web/internal/gateway"
	"storefront-web/internal/httpserver"
	"storefront-web/internal/notify"
	"storefront-web/internal/repository/clientstate"
	"storefront-web/internal/service/session"
	"storefront-web/internal/service/variant"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	var (
		pool      *pgxpool.Pool
		secondary clientstate.SecondaryProvider
	)
	if cfg.DBConnString != "" {
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
		secondary = clientstate.NewPostgres(pool, logger)
	} else {
		logger.Info("no DB_DSN configured, using in-memory state mirror")
		secondary = clientstate.NewSharedMemory()
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	gw := gateway.New(cfg.APIBaseURL, cfg.StoreSlug, httpClient, logger)
	exchanger := session.NewProviderClient(cfg.APIBaseURL, cfg.ClientID, cfg.ClientSecret, httpClient, logger)
	sessions := session.NewCoordinator()

	// Variant lookups are anonymous, so the cache shares one public caller
	// with notifications routed to the log.
	publicAPI := gw.Bind(notify.NewLog(logger), nil)
	variants := variant.NewCache(variant.NewAPIFetcher(publicAPI, logger))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Cfg:       cfg,
		Gateway:   gw,
		Exchanger: exchanger,
		Sessions:  sessions,
		Variants:  variants,
		Secondary: secondary,
		DB:        pool,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
