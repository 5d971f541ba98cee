package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
)

const shutdownTimeout = 5 * time.Second

type ServerCmd struct {
	Config   string `short:"c" default:"blackjack.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to as host:port (overrides config)"`
	LogLevel string `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	Seed     *int64 `help:"Shuffle seed for reproducible deals"`
}

func (c *ServerCmd) Run(ctx context.Context) error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := c.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.Server.LogLevel)
	rng, seed := randutil.Resolve(c.Seed)

	gameCfg := cfg.GameConfig()
	table := game.NewTable(logger, rng, game.WithConfig(gameCfg))
	srv := server.NewServer(cfg.Addr(), table, logger, server.WithPollInterval(cfg.PollInterval()))

	logger.Info("Starting blackjack server",
		"addr", cfg.Addr(),
		"seed", seed,
		"startingChips", gameCfg.StartingChips,
		"turnTimeout", gameCfg.TurnTimeout,
		"dealerStandsOn", gameCfg.DealerStandsOn)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (c *ServerCmd) applyOverrides(cfg *server.Config) error {
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid --addr %q: %w", c.Addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port in --addr %q: %w", c.Addr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = p
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	return nil
}
