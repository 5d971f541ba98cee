package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	table := game.NewTable(logger, randutil.New(7), game.WithClock(quartz.NewMock(t)))
	srv := server.NewServer("127.0.0.1:0", table, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := NewClient(ts.URL+"/", logger)
	require.NoError(t, err)
	return c
}

func TestClientAgainstServer(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	joined, err := c.Join(ctx, "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, joined.PlayerID)
	assert.Contains(t, joined.Game.Seats, joined.PlayerID)

	snap, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.Betting, snap.Phase)

	snap, err = c.PlaceBet(ctx, joined.PlayerID, 250)
	require.NoError(t, err)
	assert.Equal(t, 750, snap.Players[joined.PlayerID].Chips)
	assert.Equal(t, 1, snap.Round)
	assert.Len(t, snap.Dealer.Hand, 2)

	// With the clock held, the dealer is either still drawing or done.
	snap, err = c.Stand(ctx, joined.PlayerID)
	require.NoError(t, err)
	assert.NotEqual(t, game.Playing, snap.Phase)

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Phase, state.Phase)
}

func TestClientRejectedActionReturnsState(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	snap, err := c.Hit(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, game.Lobby, snap.Phase)
}

func TestClientErrors(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})

	_, err := NewClient("ws://localhost:3000", logger)
	assert.ErrorContains(t, err, "scheme must be http or https")

	_, err = NewClient("http://bad host", logger)
	assert.ErrorContains(t, err, "invalid server URL")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid message: boom"}`+"\n")
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, logger)
	require.NoError(t, err)
	_, err = c.State(context.Background())
	assert.ErrorContains(t, err, "invalid message: boom")

	ts.Close()
	_, err = c.State(context.Background())
	assert.Error(t, err)
}
