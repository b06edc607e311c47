package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/citrusvanilla/speed-jong/internal/config"
	"github.com/citrusvanilla/speed-jong/internal/httpapi"
	"github.com/citrusvanilla/speed-jong/internal/hub"
	"github.com/citrusvanilla/speed-jong/internal/room"
	"github.com/citrusvanilla/speed-jong/internal/settings"
	"github.com/citrusvanilla/speed-jong/internal/tournament"
)

func main() {
	envErr := godotenv.Load()

	log := zap.Must(zap.NewProduction())
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Warn("could not load .env file", zap.Error(envErr))
	}

	cfg := config.FromEnv()

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	repo := tournament.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate tournament schema", zap.Error(err))
	}
	settingsStore := settings.NewStore(db)
	if err := settingsStore.Migrate(); err != nil {
		log.Fatal("failed to migrate settings schema", zap.Error(err))
	}

	// Signal-driven root context: cancel tears down the hub and both
	// errgroup goroutines.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, room.Options{Log: log})
	svc := tournament.NewService(repo, tournament.Options{Log: log})

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:         h,
		Tournaments: svc,
		Settings:    settingsStore,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
