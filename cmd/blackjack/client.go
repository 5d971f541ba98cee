package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/blackjack/internal/client"
)

type ClientCmd struct {
	Server   string `default:"http://localhost:3000" help:"Table server URL"`
	Name     string `default:"" help:"Display name, defaults to $USER"`
	NoColor  bool   `help:"Disable colors"`
	LogFile  string `help:"Write client logs to this file"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level for --log-file"`
}

func (c *ClientCmd) Run(ctx context.Context) error {
	// The terminal belongs to the UI, so logs only go to a file if asked.
	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger := newLogger(out, c.LogLevel)

	return client.Run(ctx, client.Config{
		Server:  strings.TrimSpace(c.Server),
		Name:    c.displayName(),
		NoColor: c.NoColor,
	}, logger)
}

func (c *ClientCmd) displayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "Player"
}
