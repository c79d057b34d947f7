package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mitchelldurbincs/chesstx/internal/config"
	"github.com/mitchelldurbincs/chesstx/internal/game"
	"github.com/mitchelldurbincs/chesstx/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/chesstx/internal/gameserver"
	"github.com/mitchelldurbincs/chesstx/internal/httpapi"
	"github.com/mitchelldurbincs/chesstx/internal/journal"
	"github.com/mitchelldurbincs/chesstx/internal/monitoring"
)

const serviceName = "chesstx.GameService"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", "", "Environment overlay to merge (e.g. dev, prod)")
	port := flag.Int("port", -1, "HTTP port (-1 to use config default)")
	host := flag.String("host", "", "HTTP host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (trace, debug, info, warn, error) (empty to use config default)")
	maxGames := flag.Int("max-games", -1, "Maximum concurrent games, 0 for unlimited (-1 to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if *env != "" {
		if err := config.LoadEnvironmentConfig(*env); err != nil {
			log.Fatal().Err(err).Str("env", *env).Msg("Failed to load environment config")
		}
	}

	// Flags go in as viper overrides so they survive config reloads
	overrides := map[string]interface{}{}
	if *port != -1 {
		overrides["server.http.port"] = *port
	}
	if *host != "" {
		overrides["server.http.host"] = *host
	}
	if *logLevel != "" {
		overrides["server.log_level"] = *logLevel
	}
	if *maxGames != -1 {
		overrides["server.max_games"] = *maxGames
	}
	for key, value := range overrides {
		if err := config.Set(key, value); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Invalid command line override")
		}
	}

	cfg := config.Get()
	setupLogging(cfg.Server.LogLevel, cfg.Server.LogFormat)

	log.Info().
		Str("host", cfg.Server.HTTP.Host).
		Int("port", cfg.Server.HTTP.Port).
		Int("health_port", cfg.Server.Health.Port).
		Int("max_games", cfg.Server.MaxGames).
		Bool("journal", cfg.Journal.Enabled).
		Msg("Starting game server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	managerOpts := []gameserver.ManagerOption{
		gameserver.WithLogger(log.With().Str("component", "game_manager").Logger()),
		gameserver.WithIdempotencyTTL(cfg.Server.IdempotencyTTL),
		gameserver.WithGameDefaults(game.DefaultGameConfig(log.Logger), cfg.Game.StandardSetup),
		gameserver.WithSubscriber(eventLogger(cfg)),
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		var err error
		store, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Journal.Path).Msg("Failed to open journal")
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close journal")
			}
		}()
		managerOpts = append(managerOpts, gameserver.WithSubscriber(journal.NewSubscriber(store, log.Logger)))
	}

	manager := gameserver.NewGameManager(cfg.Server.MaxGames, managerOpts...)
	go manager.Run(ctx)

	monitor := monitoring.NewMonitor(manager)
	go monitor.Run(ctx)

	config.WatchConfig(func() {
		reloaded := config.Get()
		setupLogging(reloaded.Server.LogLevel, reloaded.Server.LogFormat)
		log.Info().Str("file", config.ConfigFilePath()).Msg("Configuration reloaded")
	}, func(err error) {
		log.Warn().Err(err).Msg("Ignoring invalid configuration change")
	})

	healthServer, grpcServer, err := serveHealth(cfg.Server.Health.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start health server")
	}

	app := httpapi.NewServer(manager, store, log.Logger, httpapi.WithMonitor(monitor)).App()
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	go func() {
		log.Info().Str("address", addr).Msg("HTTP API listening")
		if err := app.Listen(addr); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()
	log.Info().Msg("Server shutdown complete")
}

// serveHealth runs the standard gRPC health service on its own port
func serveHealth(port int) (*health.Server, *grpc.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, nil, err
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()
	return healthServer, grpcServer, nil
}

func eventLogger(cfg *config.Config) *subscribers.LoggerSubscriber {
	level, err := zerolog.ParseLevel(cfg.Development.EventLogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	sub := subscribers.NewLoggerSubscriber("event_logger", log.Logger, level)
	sub.SetDevMode(cfg.Development.VerboseEvents)
	return sub
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}
