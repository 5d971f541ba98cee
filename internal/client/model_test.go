package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeAPI struct {
	mu    sync.Mutex
	snap  game.Snapshot
	calls []string
	err   error
}

func (f *fakeAPI) record(call string) (game.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.snap, f.err
}

func (f *fakeAPI) Join(_ context.Context, name string) (protocol.Joined, error) {
	snap, err := f.record("join " + name)
	return protocol.Joined{PlayerID: "p1", Game: snap}, err
}

func (f *fakeAPI) Start(context.Context) (game.Snapshot, error) {
	return f.record("start")
}

func (f *fakeAPI) PlaceBet(_ context.Context, id string, amount int) (game.Snapshot, error) {
	return f.record(fmt.Sprintf("bet %s %d", id, amount))
}

func (f *fakeAPI) Hit(_ context.Context, id string) (game.Snapshot, error) {
	return f.record("hit " + id)
}

func (f *fakeAPI) Stand(_ context.Context, id string) (game.Snapshot, error) {
	return f.record("stand " + id)
}

func (f *fakeAPI) State(context.Context) (game.Snapshot, error) {
	return f.record("state")
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// seated returns a model that has joined as p1 with the given table
func seated(t *testing.T, snap game.Snapshot) (*Model, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{snap: snap}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	m := NewModel(context.Background(), api, "Alice", logger)

	m.Update(m.join()())
	require.Equal(t, "p1", m.PlayerID())
	return m, api
}

// apply feeds msg to the model and runs any command it returns, feeding
// the result back in
func apply(m *Model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		m.Update(out)
	}
}

func tableAt(phase game.Phase) game.Snapshot {
	return game.Snapshot{
		Players: map[string]game.PlayerState{
			"p1": {Player: game.Player{ID: "p1", Name: "Alice", Chips: 1000}},
			"p2": {Player: game.Player{ID: "p2", Name: "Bob", Chips: 1000}},
		},
		Seats: []string{"p1", "p2"},
		Phase: phase,
	}
}

func playing(current string) game.Snapshot {
	snap := tableAt(game.Playing)
	remaining := int64(14_200)
	snap.TurnOrder = []string{"p1", "p2"}
	snap.CurrentPlayerID = current
	snap.TurnRemainingMs = &remaining
	snap.Dealer = game.DealerState{Hand: game.Hand(deck.MustParseCards("Kc7d")), Value: 17}

	alice := snap.Players["p1"]
	alice.Hand = deck.MustParseCards("As9h")
	alice.Value = 20
	alice.Bet = 100
	alice.Chips = 900
	snap.Players["p1"] = alice
	return snap
}

func TestJoinOnInit(t *testing.T) {
	m, api := seated(t, tableAt(game.Lobby))

	assert.Equal(t, []string{"join Alice"}, api.Calls())
	assert.Contains(t, m.View(), "Joined as Alice")
	assert.Contains(t, m.View(), "Alice (you)")
	assert.Contains(t, m.View(), "Bob")
}

func TestPollRefreshesState(t *testing.T) {
	m, api := seated(t, tableAt(game.Lobby))
	api.snap = tableAt(game.Betting)

	_, cmd := m.Update(pollMsg(time.Now()))
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	// The state fetch comes first; the second is the next tick.
	m.Update(batch[0]())
	assert.Equal(t, game.Betting, m.snap.Phase)
	assert.Contains(t, api.Calls(), "state")
}

func TestStartOnlyFromLobby(t *testing.T) {
	m, api := seated(t, tableAt(game.Lobby))
	apply(m, key("s"))
	assert.Contains(t, api.Calls(), "start")

	m2, api2 := seated(t, tableAt(game.Betting))
	apply(m2, key("s"))
	assert.NotContains(t, api2.Calls(), "start")
	assert.Contains(t, m2.View(), "already started")
}

func TestBetEntry(t *testing.T) {
	m, api := seated(t, tableAt(game.Betting))

	apply(m, key("b"))
	require.True(t, m.betting)
	assert.Contains(t, m.View(), "Bet >")

	for _, r := range "150" {
		m.Update(key(string(r)))
	}
	apply(m, key("enter"))

	assert.False(t, m.betting)
	assert.Contains(t, api.Calls(), "bet p1 150")
}

func TestBetRejectedLocally(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status string
	}{
		{"empty", "", "Invalid bet"},
		{"zero", "0", "Invalid bet"},
		{"more than stack", "5000", "only have 1000 chips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, api := seated(t, tableAt(game.Betting))
			apply(m, key("b"))
			for _, r := range tt.input {
				m.Update(key(string(r)))
			}
			apply(m, key("enter"))

			assert.Contains(t, m.View(), tt.status)
			for _, call := range api.Calls() {
				assert.NotContains(t, call, "bet")
			}
		})
	}
}

func TestBetCancel(t *testing.T) {
	m, api := seated(t, tableAt(game.Betting))
	apply(m, key("b"))
	m.Update(key("5"))
	apply(m, key("esc"))

	assert.False(t, m.betting)
	assert.Equal(t, []string{"join Alice"}, api.Calls())
}

func TestBettingClosed(t *testing.T) {
	m, _ := seated(t, tableAt(game.Lobby))
	apply(m, key("b"))
	assert.False(t, m.betting)
	assert.Contains(t, m.View(), "Betting is closed")
}

func TestActionsOnlyOnYourTurn(t *testing.T) {
	m, api := seated(t, playing("p2"))
	apply(m, key("h"))
	apply(m, key("t"))
	assert.Equal(t, []string{"join Alice"}, api.Calls())
	assert.Contains(t, m.View(), "Not your turn")

	m, api = seated(t, playing("p1"))
	apply(m, key("h"))
	apply(m, key("t"))
	assert.Equal(t, []string{"join Alice", "hit p1", "stand p1"}, api.Calls())
}

func TestViewShowsTurnAndCountdown(t *testing.T) {
	m, _ := seated(t, playing("p1"))
	view := m.View()

	assert.Contains(t, view, "Round 0  playing")
	assert.Contains(t, view, "Dealer  K♣ 7♦ (17)")
	assert.Contains(t, view, "A♠ 9♥ (20)")
	assert.Contains(t, view, "chips 900  bet 100")
	assert.Contains(t, view, "It is your turn  15s left")

	m, _ = seated(t, playing("p2"))
	assert.Contains(t, m.View(), "It is Bob's turn")
}

func TestViewShowsResults(t *testing.T) {
	snap := tableAt(game.Finished)
	snap.Message = "Round finished"
	alice := snap.Players["p1"]
	alice.Result = game.Win
	snap.Players["p1"] = alice

	m, _ := seated(t, snap)
	view := m.View()
	assert.Contains(t, view, "Win")
	assert.Contains(t, view, "Round finished")
}

func TestErrorsAreShown(t *testing.T) {
	api := &fakeAPI{err: fmt.Errorf("connection refused")}
	m := NewModel(context.Background(), api, "Alice", log.NewWithOptions(io.Discard, log.Options{}))

	m.Update(m.join()())
	assert.Empty(t, m.PlayerID())
	assert.Contains(t, m.View(), "connection refused")

	apply(m, key("h"))
	assert.Contains(t, m.View(), "connection refused")
}

func TestQuit(t *testing.T) {
	m, _ := seated(t, tableAt(game.Lobby))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestSecondsLeft(t *testing.T) {
	for ms, want := range map[int64]int64{
		-5:     0,
		0:      0,
		1:      1,
		999:    1,
		1000:   1,
		1001:   2,
		15_000: 15,
	} {
		assert.Equal(t, want, secondsLeft(ms), "ms=%d", ms)
	}
}
