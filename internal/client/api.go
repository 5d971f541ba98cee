package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

// API is the table operations the terminal UI needs
type API interface {
	Join(ctx context.Context, name string) (protocol.Joined, error)
	Start(ctx context.Context) (game.Snapshot, error)
	PlaceBet(ctx context.Context, playerID string, amount int) (game.Snapshot, error)
	Hit(ctx context.Context, playerID string) (game.Snapshot, error)
	Stand(ctx context.Context, playerID string) (game.Snapshot, error)
	State(ctx context.Context) (game.Snapshot, error)
}

// Client talks to a table server over its JSON routes
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the server at serverURL (for example
// http://localhost:3000)
func NewClient(serverURL string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}

	return &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger.WithPrefix("client"),
	}, nil
}

// Join takes a seat and returns the assigned player ID
func (c *Client) Join(ctx context.Context, name string) (protocol.Joined, error) {
	var joined protocol.Joined
	err := c.do(ctx, http.MethodPost, protocol.PathJoin, protocol.Join{Name: name}, &joined)
	if err == nil {
		c.logger.Info("Joined table", "player", joined.PlayerID, "name", name)
	}
	return joined, err
}

// Start opens betting
func (c *Client) Start(ctx context.Context) (game.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, protocol.PathStart, nil)
}

// PlaceBet wagers amount for playerID
func (c *Client) PlaceBet(ctx context.Context, playerID string, amount int) (game.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, protocol.PathBet, protocol.Bet{PlayerID: playerID, Amount: amount})
}

// Hit asks for another card
func (c *Client) Hit(ctx context.Context, playerID string) (game.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, protocol.PathHit, protocol.Action{PlayerID: playerID})
}

// Stand ends the player's turn
func (c *Client) Stand(ctx context.Context, playerID string) (game.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, protocol.PathStand, protocol.Action{PlayerID: playerID})
}

// State fetches the current snapshot
func (c *Client) State(ctx context.Context) (game.Snapshot, error) {
	return c.snapshot(ctx, http.MethodGet, protocol.PathState, nil)
}

func (c *Client) snapshot(ctx context.Context, method, path string, body interface{}) (game.Snapshot, error) {
	var snap game.Snapshot
	err := c.do(ctx, method, path, body, &snap)
	return snap, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := protocol.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var perr protocol.Error
		if json.NewDecoder(resp.Body).Decode(&perr) == nil && perr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, perr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
