package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/mancala/internal/config"
	"github.com/mitchelldurbincs/mancala/internal/httpserver"
	"github.com/mitchelldurbincs/mancala/internal/monitoring"
	"github.com/mitchelldurbincs/mancala/internal/store"
)

func main() {
	// .env values become MANCALA_* overrides before the config is read
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxReports := flag.Int("max-reports", -1, "Reports kept in memory, oldest evicted first (-1 to use config default, 0 for unlimited)")
	watch := flag.Bool("watch-config", false, "Reload the config file when it changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}

	cfg := config.Get()

	if *port == -1 {
		*port = cfg.Server.HTTP.Port
	}
	if *host == "" {
		*host = cfg.Server.HTTP.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.HTTP.LogLevel
	}
	if *maxReports == -1 {
		*maxReports = cfg.Server.HTTP.MaxReports
	}

	setupLogging(*logLevel)

	if *watch {
		config.WatchConfig(func() {
			level, err := zerolog.ParseLevel(config.Get().Server.HTTP.LogLevel)
			if err == nil {
				zerolog.SetGlobalLevel(level)
			}
			log.Info().Str("file", config.ConfigFilePath()).Msg("Config reloaded")
		})
	}

	monitor := monitoring.NewMonitor(log.Logger, 0)
	monitor.Start()
	defer monitor.Stop()

	rules := cfg.Rules()
	srv := httpserver.New(store.NewMemoryStore(*maxReports), httpserver.Options{
		Rules:          rules,
		MaxTurns:       cfg.Simulation.MaxTurns,
		RequestTimeout: time.Duration(cfg.Server.HTTP.RequestTimeout) * time.Second,
		MaxBatchGames:  cfg.Server.HTTP.MaxBatchGames,
		BatchWorkers:   cfg.Batch.Workers,
		Monitor:        monitor,
		Logger:         log.Logger,
	})

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().
		Str("address", addr).
		Int("bins", rules.Bins).
		Bool("capture", rules.Capture).
		Int("max_reports", *maxReports).
		Msg("Starting mancala HTTP server")

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	}

	delay := time.Duration(cfg.Server.HTTP.ShutdownDelay) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), delay+time.Duration(cfg.Server.HTTP.RequestTimeout)*time.Second)
	defer cancel()

	log.Info().Msg("Gracefully stopping HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown did not complete cleanly")
	}
	log.Info().Msg("Server shutdown complete")
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Check if we're in production
	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
