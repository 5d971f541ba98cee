package client

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Config holds the settings for an interactive session
type Config struct {
	Server  string
	Name    string
	NoColor bool
}

// Run joins the table and drives the terminal UI until the user quits or
// ctx is cancelled
func Run(ctx context.Context, cfg Config, logger *log.Logger) error {
	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	api, err := NewClient(cfg.Server, logger)
	if err != nil {
		return err
	}

	// Fail fast before taking over the terminal
	if _, err := api.State(ctx); err != nil {
		return fmt.Errorf("cannot reach server: %w", err)
	}

	model := NewModel(ctx, api, cfg.Name, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	logger.Info("Left table", "player", model.PlayerID())
	return nil
}
