package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/filmdex/filmdex/internal/auth"
	"github.com/filmdex/filmdex/internal/config"
	httpserver "github.com/filmdex/filmdex/internal/http"
	"github.com/filmdex/filmdex/internal/importer"
	"github.com/filmdex/filmdex/internal/repository"
	"github.com/filmdex/filmdex/internal/store"
	"github.com/filmdex/filmdex/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:     time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:          logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer st.Close()

	catalog, err := tmdb.NewHTTPClient(cfg.TmdbBaseURL, cfg.TmdbAPIKey, time.Duration(cfg.TmdbTimeoutSecs)*time.Second, logger)
	if err != nil {
		logger.Fatal("init tmdb client", zap.Error(err))
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("init jwt manager", zap.Error(err))
	}

	repo := repository.New(st)

	// One-shot startup seeding: catalog population, genre taxonomy, default
	// users. Best-effort; the API serves whatever is populated.
	imp := importer.New(catalog, repo, importer.Options{
		MaxPages:    cfg.ImportMaxPages,
		TargetCount: int64(cfg.ImportTargetCount),
		PageDelay:   time.Duration(cfg.ImportPageDelayMs) * time.Millisecond,
		Logger:      logger,
	})
	imp.Initialize(ctx)

	server := httpserver.New(cfg, st, repo, jwtManager, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}
