package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mvdwalt/sidebill/internal/application/billing"
	"github.com/mvdwalt/sidebill/internal/infrastructure/bolt"
	infrapdf "github.com/mvdwalt/sidebill/internal/infrastructure/pdf"
	httpRouter "github.com/mvdwalt/sidebill/internal/interfaces/http"
	"github.com/mvdwalt/sidebill/pkg/config"
	"github.com/mvdwalt/sidebill/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Path).
		Msg("starting application")

	db, err := bolt.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer db.Close()

	store, err := billing.NewStore(context.Background(), db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("load invoice collection")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Store: store,
		PDF:   infrapdf.NewGenerator(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
