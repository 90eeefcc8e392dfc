package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sumire/phlink/internal/config"
	"github.com/sumire/phlink/internal/handler"
	"github.com/sumire/phlink/internal/repository"
	"github.com/sumire/phlink/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store service.CredentialStore
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		s, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		defer s.Close()
		store = s
	default:
		db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pg := repository.NewPostgresCredentialStore(db)

		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(schemaCtx); err != nil {
			return err
		}
		store = pg
	}

	slog.Info("credential store ready", "backend", cfg.StorageBackend)

	provider := service.NewProductHuntClient(service.ProductHuntConfig{
		ClientID:     cfg.ProductHuntClientID,
		ClientSecret: cfg.ProductHuntClientSecret,
		RedirectURI:  cfg.ProductHuntRedirectURI,
		AuthURL:      cfg.ProductHuntAuthURL,
		TokenURL:     cfg.ProductHuntTokenURL,
		GraphQLURL:   cfg.ProductHuntGraphQLURL,
	})
	notifier := service.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAPIBase)

	linkSvc := service.NewLinkService(provider, store, notifier)
	linkHandler := handler.NewLinkHandler(linkSvc, cfg)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(handler.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/auth/producthunt", linkHandler.Start)
	e.GET("/auth/producthunt/callback", linkHandler.Callback)

	api := e.Group("/api/v1", handler.JWTAuth(cfg.JWTSecret))
	api.GET("/credentials", linkHandler.List)
	api.GET("/credentials/:chat_id", linkHandler.Get)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
