package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geofield/internal/config"
	"github.com/woozymasta/geofield/internal/logger"
	"github.com/woozymasta/geofield/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"       env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr        string `short:"a" long:"addr"         env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port        int    `short:"p" long:"port"         env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	MaxSessions int    `short:"m" long:"max-sessions" env:"MAX_SESSIONS"   description:"Mounted controls limit"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", opts.ConfigFile).Msg("Configuration file not found, using defaults")
		cfg = config.Default()
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.MaxSessions > 0 {
		cfg.MaxSessions = opts.MaxSessions
	}

	srvCtx := server.NewServerContext(cfg)
	handler := server.RequestLogger(srvCtx.Routes())

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", listenAddr).
			Int("fields_loaded", len(cfg.Fields)).
			Msg("Web server started")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	srvCtx.Shutdown()
	log.Info().Int("sessions", srvCtx.Sessions()).Msg("Server exited")
}
