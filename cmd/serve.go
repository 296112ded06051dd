package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/internal/supply"
	"github.com/sherpas/supply/pkg/db"
	"github.com/sherpas/supply/pkg/events"
	"github.com/sherpas/supply/pkg/telemetry"
	"github.com/sherpas/supply/pkg/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the supply contract and serve the supply view",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, wallet, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry, cfg.AppName, cfg.Environment)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	eventBus := events.NewEventBus(&cfg.EventBus)

	var history web.HistoryStore
	dbAdapter, err := db.NewDatabaseAdapter(cfg.Database.URL, cfg.Contract.Address, cfg.Contract.Function)
	switch {
	case errors.Is(err, db.ErrHistoryDisabled):
		log.Info().Msg("Reading history disabled, no database url configured")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create database adapter")
	default:
		history = dbAdapter
		go dbAdapter.ListenEventsFromBusChannel(ctx, eventBus.Subscribe(events.ALL_CHAINS))
	}

	service, err := supply.NewService(ctx, cfg, wallet, eventBus)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create supply service")
	}
	if err := service.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start supply service")
	}

	server := web.NewServer(cfg.HTTP.Addr, wallet, service, history)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Web server stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down supply service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown web server")
	}
	service.Stop()
	eventBus.Close()
	cancel()
	if dbAdapter != nil {
		if err := dbAdapter.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}
}
