package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

// DefaultPollInterval is how often the model refreshes the table
const DefaultPollInterval = time.Second

type (
	pollMsg     time.Time
	joinedMsg   protocol.Joined
	snapshotMsg game.Snapshot
	errMsg      struct{ err error }
)

// Model is the bubbletea model for one seated player. It polls the server
// for snapshots and sends the player's actions.
type Model struct {
	ctx    context.Context
	api    API
	logger *log.Logger
	poll   time.Duration

	name     string
	playerID string

	snap   game.Snapshot
	synced bool
	status string
	err    error

	betting  bool
	betInput textinput.Model
	quitting bool
	width    int
}

// NewModel creates a model that joins the table as name once started
func NewModel(ctx context.Context, api API, name string, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "amount"
	ti.CharLimit = 9
	ti.Width = 12
	ti.Prompt = "Bet > "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return fmt.Errorf("digits only")
			}
		}
		return nil
	}

	return &Model{
		ctx:      ctx,
		api:      api,
		logger:   logger.WithPrefix("tui"),
		poll:     DefaultPollInterval,
		name:     name,
		betInput: ti,
	}
}

// PlayerID returns the seat assigned by the server, empty until joined
func (m *Model) PlayerID() string {
	return m.playerID
}

// Init joins the table and starts polling
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.join(), m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m *Model) join() tea.Cmd {
	name := m.name
	return func() tea.Msg {
		joined, err := m.api.Join(m.ctx, name)
		if err != nil {
			return errMsg{err}
		}
		return joinedMsg(joined)
	}
}

func (m *Model) send(call func(ctx context.Context) (game.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := call(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg(snap)
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pollMsg:
		return m, tea.Batch(m.send(m.api.State), m.tick())

	case joinedMsg:
		m.playerID = msg.PlayerID
		m.snap = msg.Game
		m.synced = true
		m.err = nil
		m.status = fmt.Sprintf("Joined as %s", m.displayName())
		return m, nil

	case snapshotMsg:
		m.snap = game.Snapshot(msg)
		m.synced = true
		m.err = nil
		return m, nil

	case errMsg:
		m.err = msg.err
		m.logger.Warn("Request failed", "error", msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.betting {
			return m.updateBetInput(msg)
		}
		return m.handleKey(msg)
	}

	if m.betting {
		var cmd tea.Cmd
		m.betInput, cmd = m.betInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	if m.playerID == "" {
		m.status = "Not seated yet"
		return m, nil
	}

	switch msg.String() {
	case "s":
		if m.snap.Phase != game.Lobby {
			m.status = "The table has already started"
			return m, nil
		}
		return m, m.send(m.api.Start)

	case "b":
		if m.snap.Phase != game.Betting {
			m.status = "Betting is closed"
			return m, nil
		}
		if p, ok := m.snap.Player(m.playerID); ok && p.Bet > 0 {
			m.status = "You have already bet this round"
			return m, nil
		}
		m.betting = true
		m.status = ""
		m.betInput.Focus()
		return m, textinput.Blink

	case "h":
		if !m.myTurn() {
			m.status = "Not your turn"
			return m, nil
		}
		return m, m.send(func(ctx context.Context) (game.Snapshot, error) {
			return m.api.Hit(ctx, m.playerID)
		})

	case "t":
		if !m.myTurn() {
			m.status = "Not your turn"
			return m, nil
		}
		return m, m.send(func(ctx context.Context) (game.Snapshot, error) {
			return m.api.Stand(ctx, m.playerID)
		})
	}

	return m, nil
}

func (m *Model) updateBetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.closeBetInput()
		return m, nil

	case "enter":
		raw := strings.TrimSpace(m.betInput.Value())
		m.closeBetInput()

		amount, err := strconv.Atoi(raw)
		if err != nil || amount <= 0 {
			m.status = fmt.Sprintf("Invalid bet %q", raw)
			return m, nil
		}
		if p, ok := m.snap.Player(m.playerID); ok && amount > p.Chips {
			m.status = fmt.Sprintf("You only have %d chips", p.Chips)
			return m, nil
		}

		m.status = fmt.Sprintf("Bet %d", amount)
		return m, m.send(func(ctx context.Context) (game.Snapshot, error) {
			return m.api.PlaceBet(ctx, m.playerID, amount)
		})
	}

	var cmd tea.Cmd
	m.betInput, cmd = m.betInput.Update(msg)
	return m, cmd
}

func (m *Model) closeBetInput() {
	m.betting = false
	m.betInput.Blur()
	m.betInput.Reset()
}

func (m *Model) myTurn() bool {
	return m.snap.Phase == game.Playing && m.snap.CurrentPlayerID == m.playerID
}

func (m *Model) displayName() string {
	if p, ok := m.snap.Player(m.playerID); ok {
		return p.Name
	}
	return m.name
}

// View renders the table
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.synced {
		if m.err != nil {
			return ErrorStyle.Render("Cannot reach server: "+m.err.Error()) + "\n"
		}
		return "Connecting...\n"
	}

	var b strings.Builder

	header := fmt.Sprintf("Blackjack  Round %d  %s", m.snap.Round, m.snap.Phase)
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(BoxStyle.Render(m.renderTable()))
	b.WriteString("\n")

	if line := m.renderTurn(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.snap.Message != "" {
		b.WriteString(WarningStyle.Render(m.snap.Message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.betting {
		b.WriteString(m.betInput.View())
		b.WriteString(InfoStyle.Render("  enter to confirm, esc to cancel"))
	} else {
		b.WriteString(ActionsStyle.Render("[s]tart  [b]et  [h]it  [t] stand  [q]uit"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(InfoStyle.Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderTable() string {
	var lines []string

	dealer := "Dealer  "
	if len(m.snap.Dealer.Hand) > 0 {
		dealer += fmt.Sprintf("%s (%d)", renderHand(m.snap.Dealer.Hand), m.snap.Dealer.Value)
	} else {
		dealer += InfoStyle.Render("waiting")
	}
	lines = append(lines, DealerStyle.Render(dealer), "")

	if len(m.snap.Seats) == 0 {
		lines = append(lines, InfoStyle.Render("No players seated"))
	}

	for _, id := range m.snap.Seats {
		p, ok := m.snap.Player(id)
		if !ok {
			continue
		}

		marker := "  "
		if id == m.snap.CurrentPlayerID && m.snap.Phase == game.Playing {
			marker = CurrentTurnStyle.Render("> ")
		}

		name := p.Name
		if id == m.playerID {
			name = YouStyle.Render(name + " (you)")
		}

		line := fmt.Sprintf("%s%s  chips %d  bet %d", marker, name, p.Chips, p.Bet)
		if len(p.Hand) > 0 {
			line += fmt.Sprintf("  %s (%d)", renderHand(p.Hand), p.Value)
		}
		if p.Result != game.NoResult {
			line += "  " + renderResult(p.Result)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderTurn() string {
	if m.snap.Phase != game.Playing || m.snap.CurrentPlayerID == "" {
		return ""
	}

	who := m.snap.CurrentPlayerID
	if p, ok := m.snap.Player(who); ok {
		who = p.Name
	}
	if m.snap.CurrentPlayerID == m.playerID {
		who = "your"
	} else {
		who += "'s"
	}

	line := fmt.Sprintf("It is %s turn", who)
	if m.snap.TurnRemainingMs != nil {
		line += fmt.Sprintf("  %ds left", secondsLeft(*m.snap.TurnRemainingMs))
	}
	return CurrentTurnStyle.Render(line)
}

// secondsLeft rounds a millisecond countdown up to whole seconds
func secondsLeft(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

func renderHand(hand game.Hand) string {
	cards := make([]string, len(hand))
	for i, c := range hand {
		cards[i] = renderCard(c)
	}
	return strings.Join(cards, " ")
}

func renderCard(c deck.Card) string {
	if c.IsRed() {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

func renderResult(r game.Result) string {
	switch r {
	case game.Win:
		return SuccessStyle.Render(string(r))
	case game.Push:
		return WarningStyle.Render(string(r))
	default:
		return ErrorStyle.Render(string(r))
	}
}
