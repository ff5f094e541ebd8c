package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/csdraft/mapban-backend/internal/auth"
	"github.com/csdraft/mapban-backend/internal/config"
	"github.com/csdraft/mapban-backend/internal/httpapi"
	"github.com/csdraft/mapban-backend/internal/hub"
	"github.com/csdraft/mapban-backend/internal/room"
	"github.com/csdraft/mapban-backend/internal/store"
	"github.com/csdraft/mapban-backend/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return err
	}
	st, err := store.New(db)
	if err != nil {
		return err
	}

	authSvc, err := auth.New(cfg.AdminUser, cfg.AdminPassword, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	h := hub.New(ctx, st, st, room.Config{
		MaxPlayers:    cfg.MaxPlayers,
		TurnTimeout:   cfg.TurnTimeout,
		FinalizeAfter: cfg.FinalizeAfter,
		IdleGrace:     cfg.IdleGrace,
	}, logger)

	api := &httpapi.API{
		Hub:        h,
		Store:      st,
		Auth:       authSvc,
		Logger:     logger,
		MaxPlayers: cfg.MaxPlayers,
	}
	handler := httpapi.SetupRoutes(api, ws.Handler(h, logger, cfg.AllowedOrigins), cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
