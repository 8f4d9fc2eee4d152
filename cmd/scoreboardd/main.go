package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/scoreboard/internal/cardgame"
	"github.com/opencourt/scoreboard/internal/config"
	"github.com/opencourt/scoreboard/internal/database"
	"github.com/opencourt/scoreboard/internal/gateway"
	"github.com/opencourt/scoreboard/internal/httpapi"
	"github.com/opencourt/scoreboard/internal/ratelimit"
	"github.com/opencourt/scoreboard/internal/scoreboard"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config overlay")
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// A bad alphabet invalidates every issued identifier, so refuse to start.
	codec, err := cfg.Codec()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build identifier codec")
	}

	db, err := database.Open(cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().
		Str("database", cfg.DB.Database).
		Str("port", cfg.Port).
		Str("codec", codec.Fingerprint()).
		Msg("starting scoreboard server")

	connCfg := gateway.DefaultConnConfig()
	connCfg.CheckOrigin = gateway.OriginChecker(cfg.AllowedOrigins)
	hub := gateway.NewHub(connCfg, codec.ValidFormat,
		ratelimit.New(cfg.RateLimit.JoinWindow, cfg.RateLimit.JoinCap))

	boards := scoreboard.NewApp(scoreboard.NewRepository(db), codec, hub)
	games := cardgame.NewApp(cardgame.NewRepository(db), codec)

	mux := http.NewServeMux()
	gateway.NewHandler(hub).RegisterRoutes(mux)
	httpapi.NewServer(boards, games, ratelimit.New(cfg.RateLimit.RequestWindow, cfg.RateLimit.RequestCap)).RegisterRoutes(mux)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Start(ctx)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("scoreboard server stopped")
}
