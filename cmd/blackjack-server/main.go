package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/cardroom/blackjack/internal/auth"
	"github.com/cardroom/blackjack/internal/profile"
	"github.com/cardroom/blackjack/internal/randutil"
	"github.com/cardroom/blackjack/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"blackjack-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `long:"seed" help:"Shoe RNG seed, 0 picks one from the clock"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = randutil.NewSeed()
	}

	logger.Info("Starting Blackjack Server",
		"addr", cfg.GetServerAddress(),
		"rooms", len(cfg.Rooms),
		"profiles", cfg.Profiles.Path)

	store, err := profile.NewStore(cfg.Profiles.Path, logger)
	if err != nil {
		logger.Error("Failed to open profile store", "error", err)
		ctx.Exit(1)
	}

	wsServer := server.NewServer(cfg.GetServerAddress(), logger)
	rooms := server.NewRoomService(wsServer, store, cfg.Rooms, logger, seed)
	wsServer.SetRoomService(rooms)

	if cfg.Server.AuthEndpoint != "" {
		logger.Info("Token validation enabled", "endpoint", cfg.Server.AuthEndpoint)
		wsServer.SetValidator(auth.NewHTTPValidator(cfg.Server.AuthEndpoint, cfg.Server.AuthSecret))
	}

	for _, room := range cfg.Rooms {
		logger.Info("Created room",
			"name", room.Name,
			"decks", room.Decks,
			"bets", fmt.Sprintf("$%d-$%d", room.MinBet, room.MaxBet),
			"maxPlayers", room.MaxPlayers)
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Shutting down server...")
		_ = wsServer.Stop()
		os.Exit(0)
	}()

	// Start server (this blocks)
	if err := wsServer.Start(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
