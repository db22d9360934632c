package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/catalog"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/gateway"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/realtime"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/room"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}
	setupLogging()

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, dsn, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	snap, err := catalog.NewRepository(db).Load(ctx, config.Draft.Year)
	if err != nil {
		log.Fatal().Err(err).Int("year", config.Draft.Year).Msg("failed to load draft catalog")
	}
	log.Info().
		Int("prospects", len(snap.Prospects)).
		Int("teams", len(snap.Teams)).
		Int("year", config.Draft.Year).
		Msg("draft catalog loaded")

	busCfg := realtime.DefaultConfig()
	busCfg.URL = getEnv("NATS_URL", config.Realtime.NATSURL)
	if busCfg.URL == "" {
		busCfg.URL = realtime.DefaultConfig().URL
	}
	busCfg.SubjectPrefix = config.Realtime.SubjectPrefix
	busCfg.ReconnectWait = time.Duration(config.Realtime.ReconnectWait)
	bus, err := realtime.Connect(busCfg)
	if err != nil {
		log.Fatal().Err(err).Str("url", busCfg.URL).Msg("failed to connect to NATS")
	}
	defer bus.Close()

	listenerCfg := realtime.DefaultListenerConfig(dsn)
	listenerCfg.FallbackInterval = time.Duration(config.Realtime.FallbackInterval)
	listenerCfg.PingInterval = time.Duration(config.Realtime.PingInterval)

	gw := gateway.New(room.NewService(db), snap, bus, listenerCfg, gateway.DraftDefaults{
		Year:   config.Draft.Year,
		Rounds: config.Draft.Rounds,
	})

	server := setupServer(gw)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if getEnv("LOG_PRETTY", "") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
