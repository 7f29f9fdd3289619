package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/krishkalaria12/snap-vault/ai"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	handler "github.com/krishkalaria12/snap-vault/handlers"
	"github.com/krishkalaria12/snap-vault/router"
	"github.com/krishkalaria12/snap-vault/services"
	"github.com/krishkalaria12/snap-vault/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			return fmt.Errorf("failed to init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.Connect(cfg.Database, cfg.LogLevel)
	if err != nil {
		return err
	}
	// close the database connection
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing the database connection: %v", err)
		}
	}()

	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	ctx := context.Background()

	objects, err := storage.New(ctx, cfg.Storage, cfg.AppURL)
	if err != nil {
		return err
	}
	if closer, ok := objects.(io.Closer); ok {
		defer closer.Close()
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var vision ai.Describer
	gemini, err := ai.NewGemini(ctx, cfg.Gemini, httpClient)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		log.Println("GEMINI_API_KEY not set, image analysis is disabled")
		vision = ai.Disabled{}
	case err != nil:
		return err
	default:
		vision = gemini
	}

	users := database.NewUserRepository(db)
	images := database.NewImageRepository(db)
	profiles := database.NewProfileRepository(db)

	authService := auth.NewService(cfg.Auth, cfg.AppURL, users, auth.LogMailer{})

	h := handler.New(
		authService,
		services.NewImageService(images, objects),
		services.NewAnnotationService(images, objects, vision, ai.NewFetcher(httpClient)),
		services.NewProfileService(profiles),
	)

	app := router.NewApp()
	if local, ok := objects.(*storage.Local); ok {
		app.Static(cfg.Storage.LocalRoute, local.Dir())
	}
	router.SetupRoutes(app, h, authService, cfg.LoginURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server is listening at the port %s", cfg.Port)
		serverErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}
