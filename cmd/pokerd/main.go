// Command pokerd runs the poker room server: it accepts CreateGame,
// JoinGame, and AuthGame over HTTP and streams per-game state and
// commands over WebSocket. Grounded on the teacher's cmd/server/main.go
// wiring shape (kong CLI, zerolog console logger, signal-driven
// graceful shutdown); the bot-process spawning and stats-printing
// machinery that main.go also did has no counterpart here, since
// pokerd has no bots to launch.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/dispatch"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/orchestrator"
	"github.com/lox/holdem-engine/internal/registry"
	"github.com/lox/holdem-engine/internal/store"
	"github.com/lox/holdem-engine/internal/store/memstore"
	"github.com/lox/holdem-engine/internal/store/sqlstore"
	"github.com/lox/holdem-engine/internal/transport"
)

// CLI holds the flags pokerd accepts, mirroring the teacher's flat
// kong.Parse struct rather than subcommands.
type CLI struct {
	Addr   string `kong:"help='Server address, overrides the config file',default=''"`
	Config string `kong:"help='Path to an HCL config file',default='pokerd.hcl'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	SQLite string `kong:"help='Path to a sqlite database file; empty keeps everything in memory'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pokerd"),
		kong.Description("Texas Hold'em room server"),
		kong.UsageOnError(),
	)

	config, err := LoadConfig(cli.Config)
	kctx.FatalIfErrorf(err)
	if cli.Addr != "" {
		host, port := splitHostPort(cli.Addr)
		config.Server.Address, config.Server.Port = host, port
	}
	kctx.FatalIfErrorf(config.Validate())

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(config.Server.LogLevel); err == nil {
		level = parsed
	}
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	st, closeStore, err := openStore(cli.SQLite)
	kctx.FatalIfErrorf(err)
	defer closeStore()

	hub := dispatch.NewHub(logger)
	reg := registry.New(logger)
	manager := orchestrator.NewManager(logger, st, hub, reg)
	defaultConfig := engine.GameConfig{
		SmallBlind:    config.Table.SmallBlind,
		BigBlind:      config.Table.BigBlind,
		StartingChips: config.Table.StartingChips,
	}
	srv := transport.New(logger, manager, reg, hub, st, defaultConfig)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", config.Addr()).
			Int("small_blind", config.Table.SmallBlind).
			Int("big_blind", config.Table.BigBlind).
			Int("starting_chips", config.Table.StartingChips).
			Msg("pokerd starting")
		serverErr <- srv.Serve(config.Addr())
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server exited with error")
			os.Exit(1)
		}
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server exited with error")
		} else {
			logger.Info().Msg("server shutdown complete")
		}
	}
}

func openStore(path string) (store.Store, func(), error) {
	if path == "" {
		return memstore.New(), func() {}, nil
	}
	st, err := sqlstore.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}

// splitHostPort parses a -addr flag shaped like "host:port" into the
// config's separate Address/Port fields, falling back to "localhost"
// when only a bare port is given (":8080").
func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "localhost", 8080
	}
	if host == "" {
		host = "localhost"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 8080
	}
	return host, port
}
