package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/roundid"
)

// Config holds the table rules and pacing
type Config struct {
	StartingChips   int
	TurnTimeout     time.Duration
	DealerDrawDelay time.Duration
	FinishedHold    time.Duration
	DealerStandsOn  int
}

// DefaultConfig returns the standard table settings
func DefaultConfig() Config {
	return Config{
		StartingChips:   1000,
		TurnTimeout:     15 * time.Second,
		DealerDrawDelay: time.Second,
		FinishedHold:    5 * time.Second,
		DealerStandsOn:  17,
	}
}

// NoBettorsMessage is shown while betting is open but every seated player
// is out of chips
const NoBettorsMessage = "No player has chips left to bet"

// Timer tags, usable with quartz traps in tests
const (
	TagTurn     = "turn"
	TagDealer   = "dealer"
	TagFinished = "finished"
)

// Option configures a Table
type Option func(*Table)

// WithConfig replaces the default rules
func WithConfig(cfg Config) Option {
	return func(t *Table) {
		t.cfg = cfg
	}
}

// WithClock sets the clock used for deadlines and timers
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) {
		t.clock = clock
	}
}

// WithDeck replaces how a round's deck is built. The default is a freshly
// shuffled 52-card deck.
func WithDeck(newDeck func(rng *rand.Rand) *deck.Deck) Option {
	return func(t *Table) {
		t.newDeck = newDeck
	}
}

// WithPlayerIDs replaces the player ID generator
func WithPlayerIDs(next func() string) Option {
	return func(t *Table) {
		t.newPlayerID = next
	}
}

// Table is the single shared blackjack table. All exported methods are safe
// for concurrent use; every mutation, including timer callbacks, runs under
// one mutex so the table behaves as a single-threaded state machine.
type Table struct {
	mu sync.Mutex

	cfg         Config
	clock       quartz.Clock
	rng         *rand.Rand
	newDeck     func(rng *rand.Rand) *deck.Deck
	newPlayerID func() string
	roundIDs    *roundid.Generator
	logger      *log.Logger

	players    map[string]*Player
	seats      []string // join order
	turnOrder  []string // fixed for the round
	turnIndex  int
	dealer     Dealer
	deck       *deck.Deck
	phase      Phase
	turnEndsAt *time.Time
	message    string
	round      int
	roundID    string

	// timer is the single pending scheduled task; generation invalidates
	// callbacks that fired but had not yet taken the lock when replaced.
	timer      *quartz.Timer
	generation uint64
}

// NewTable creates an empty table in the lobby phase
func NewTable(logger *log.Logger, rng *rand.Rand, opts ...Option) *Table {
	t := &Table{
		cfg:         DefaultConfig(),
		clock:       quartz.NewReal(),
		rng:         rng,
		newDeck:     deck.NewShuffled,
		newPlayerID: uuid.NewString,
		roundIDs:    roundid.NewGenerator(nil),
		logger:      logger.WithPrefix("table"),
		players:     make(map[string]*Player),
		phase:       Lobby,
		deck:        deck.NewStacked(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Join seats a new player with the starting stack and returns their ID.
// Players who join mid-round take part from the next deal.
func (t *Table) Join(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Player %d", len(t.seats)+1)
	}

	id := t.newPlayerID()
	t.players[id] = &Player{
		ID:    id,
		Name:  name,
		Chips: t.cfg.StartingChips,
	}
	t.seats = append(t.seats, id)
	if t.phase == Betting {
		t.message = t.bettingMessage()
	}

	t.logger.Info("Player joined", "player", id, "name", name, "chips", t.cfg.StartingChips, "seats", len(t.seats))
	return id
}

// Start opens betting. Only valid from the lobby with at least one player.
func (t *Table) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != Lobby {
		return ErrWrongPhase
	}
	if len(t.seats) == 0 {
		return ErrNoPlayers
	}

	t.phase = Betting
	t.message = t.bettingMessage()
	t.logger.Info("Table started", "players", len(t.seats))
	return nil
}

// PlaceBet wagers amount for the player. The round is dealt as soon as
// every player with chips has bet.
func (t *Table) PlaceBet(playerID string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if t.phase != Betting {
		return ErrWrongPhase
	}
	if p.Bet > 0 {
		return ErrAlreadyBet
	}
	if amount <= 0 || amount > p.Chips {
		return ErrInvalidBet
	}

	p.Chips -= amount
	p.Bet = amount
	t.logger.Debug("Bet placed", "player", playerID, "amount", amount, "chips", p.Chips)

	if t.allBetsIn() {
		t.startRound()
	}
	return nil
}

func (t *Table) allBetsIn() bool {
	bettors := 0
	for _, id := range t.seats {
		p := t.players[id]
		if p.Bet > 0 {
			bettors++
			continue
		}
		if p.CanBet() {
			return false
		}
	}
	return bettors > 0
}

// Hit deals one card to the current player. A bust ends their turn.
func (t *Table) Hit(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.actingPlayer(playerID)
	if err != nil {
		return err
	}

	p.Hand = append(p.Hand, t.draw())
	value := p.Hand.Value()
	t.logger.Debug("Hit", "player", playerID, "hand", p.Hand.String(), "value", value)

	if value > 21 {
		p.Busted = true
		t.logger.Info("Player busted", "player", playerID, "value", value)
		t.advanceTurn()
	}
	return nil
}

// Stand ends the current player's turn
func (t *Table) Stand(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.actingPlayer(playerID)
	if err != nil {
		return err
	}

	p.Stood = true
	t.logger.Debug("Stand", "player", playerID, "value", p.Hand.Value())
	t.advanceTurn()
	return nil
}

func (t *Table) actingPlayer(playerID string) (*Player, error) {
	p, ok := t.players[playerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if t.phase != Playing {
		return nil, ErrWrongPhase
	}
	if t.currentPlayerID() != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

func (t *Table) currentPlayerID() string {
	if t.turnIndex < 0 || t.turnIndex >= len(t.turnOrder) {
		return ""
	}
	return t.turnOrder[t.turnIndex]
}

// Phase returns the current phase
func (t *Table) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Stop cancels any pending timer. A stopped table no longer advances on its
// own; it is used on server shutdown.
func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelTimer()
}

func (t *Table) startRound() {
	t.round++
	t.roundID = t.roundIDs.Generate()
	t.deck = t.newDeck(t.rng)
	t.dealer.Hand = nil

	t.turnOrder = t.turnOrder[:0]
	for _, id := range t.seats {
		p := t.players[id]
		p.resetForDeal()
		if p.Bet > 0 {
			t.turnOrder = append(t.turnOrder, id)
		}
	}

	for _, id := range t.turnOrder {
		p := t.players[id]
		p.Hand = Hand{t.draw(), t.draw()}
	}
	t.dealer.Hand = Hand{t.draw(), t.draw()}

	t.turnIndex = 0
	t.phase = Playing
	t.message = ""

	t.logger.Info("Round started",
		"round", t.round,
		"roundId", t.roundID,
		"players", len(t.turnOrder),
		"dealerUp", t.dealer.Hand[0].String())

	t.beginTurn()
}

func (t *Table) beginTurn() {
	deadline := t.clock.Now().Add(t.cfg.TurnTimeout)
	t.turnEndsAt = &deadline
	t.schedule(t.cfg.TurnTimeout, TagTurn, t.turnTimedOut)
}

func (t *Table) turnTimedOut() {
	id := t.currentPlayerID()
	if id == "" {
		return
	}

	t.players[id].Stood = true
	t.logger.Warn("Turn timed out, standing", "player", id, "timeout", t.cfg.TurnTimeout)
	t.advanceTurn()
}

func (t *Table) advanceTurn() {
	t.cancelTimer()
	t.turnIndex++

	if t.turnIndex >= len(t.turnOrder) {
		t.turnIndex = len(t.turnOrder)
		t.phase = DealerTurn
		t.turnEndsAt = nil
		t.logger.Debug("Dealer's turn", "hand", t.dealer.Hand.String(), "value", t.dealer.Hand.Value())
		t.dealerStep()
		return
	}

	t.beginTurn()
}

// dealerStep draws for the dealer one card per pacing interval until the
// dealer reaches the stand threshold, then settles.
func (t *Table) dealerStep() {
	if t.dealer.Hand.Value() < t.cfg.DealerStandsOn {
		t.schedule(t.cfg.DealerDrawDelay, TagDealer, func() {
			t.dealer.Hand = append(t.dealer.Hand, t.draw())
			t.logger.Debug("Dealer draws", "hand", t.dealer.Hand.String(), "value", t.dealer.Hand.Value())
			t.dealerStep()
		})
		return
	}

	t.settle()
}

func (t *Table) settle() {
	dealerValue := t.dealer.Hand.Value()

	for _, id := range t.turnOrder {
		p := t.players[id]
		p.Result = Settle(p.Hand, p.Busted, t.dealer.Hand)
		p.Chips += Payout(p.Result, p.Bet)

		t.logger.Info("Settled",
			"player", id,
			"value", p.Hand.Value(),
			"dealer", dealerValue,
			"result", string(p.Result),
			"bet", p.Bet,
			"chips", p.Chips)

		p.Bet = 0
	}

	t.phase = Finished
	t.message = "Round finished"
	t.schedule(t.cfg.FinishedHold, TagFinished, t.reopenBetting)
}

func (t *Table) reopenBetting() {
	t.phase = Betting
	t.turnEndsAt = nil
	t.message = t.bettingMessage()
	t.logger.Debug("Betting open", "round", t.round+1)
}

// bettingMessage tells players whether the next round can be dealt. With
// every stack at zero the table waits in betting until someone joins.
func (t *Table) bettingMessage() string {
	for _, id := range t.seats {
		if t.players[id].CanBet() {
			return "Place your bets"
		}
	}
	t.logger.Warn("No seated player has chips left", "seats", len(t.seats))
	return NoBettorsMessage
}

// draw takes the next card. If the deck runs dry mid-round it is rebuilt
// from every card not currently held at the table.
func (t *Table) draw() deck.Card {
	if c, ok := t.deck.Draw(); ok {
		return c
	}

	t.deck.Refill(t.cardsInPlay())
	t.logger.Warn("Deck exhausted, reshuffling cards not in play", "round", t.round, "remaining", t.deck.Remaining())

	if c, ok := t.deck.Draw(); ok {
		return c
	}

	// Every card is in someone's hand; open a second deck.
	t.deck = deck.NewShuffled(t.rng)
	t.logger.Error("No cards left outside hands, opening a fresh deck", "round", t.round)
	c, _ := t.deck.Draw()
	return c
}

func (t *Table) cardsInPlay() []deck.Card {
	cards := t.dealer.Hand.Clone()
	for _, id := range t.turnOrder {
		cards = append(cards, t.players[id].Hand...)
	}
	return cards
}

// schedule replaces the pending timer with fn after d. fn runs under the
// table lock and is skipped if the timer was replaced or cancelled first.
func (t *Table) schedule(d time.Duration, tag string, fn func()) {
	t.cancelTimer()
	gen := t.generation

	t.timer = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.generation != gen {
			return
		}
		t.timer = nil
		fn()
	}, "table", tag)
}

func (t *Table) cancelTimer() {
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
