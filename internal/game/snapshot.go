package game

// PlayerState is a player as seen in a snapshot, with the scored hand value
type PlayerState struct {
	Player
	Value int `json:"value"`
}

// DealerState is the dealer as seen in a snapshot
type DealerState struct {
	Hand  Hand `json:"hand"`
	Value int  `json:"value"`
}

// Snapshot is a point-in-time copy of the table for polling clients. It
// shares no memory with the table.
type Snapshot struct {
	Players          map[string]PlayerState `json:"players"`
	Seats            []string               `json:"seats"`
	TurnOrder        []string               `json:"turnOrder"`
	CurrentTurnIndex int                    `json:"currentTurnIndex"`
	CurrentPlayerID  string                 `json:"currentPlayerId,omitempty"`
	Dealer           DealerState            `json:"dealer"`
	DeckRemaining    int                    `json:"deckRemaining"`
	Phase            Phase                  `json:"phase"`
	Round            int                    `json:"round"`
	RoundID          string                 `json:"roundId,omitempty"`
	TurnEndsAt       *int64                 `json:"turnEndsAt"`      // unix milliseconds
	TurnRemainingMs  *int64                 `json:"turnRemainingMs"` // derived countdown
	Message          string                 `json:"message"`
}

// Snapshot returns a deep copy of the current table state
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Players:          make(map[string]PlayerState, len(t.players)),
		Seats:            append([]string{}, t.seats...),
		TurnOrder:        append([]string{}, t.turnOrder...),
		CurrentTurnIndex: t.turnIndex,
		CurrentPlayerID:  t.currentPlayerID(),
		Dealer: DealerState{
			Hand:  t.dealer.Hand.Clone(),
			Value: t.dealer.Hand.Value(),
		},
		DeckRemaining: t.deck.Remaining(),
		Phase:         t.phase,
		Round:         t.round,
		RoundID:       t.roundID,
		Message:       t.message,
	}

	for id, p := range t.players {
		cp := *p
		cp.Hand = p.Hand.Clone()
		s.Players[id] = PlayerState{Player: cp, Value: cp.Hand.Value()}
	}

	if t.turnEndsAt != nil {
		endsAt := t.turnEndsAt.UnixMilli()
		remaining := max(t.turnEndsAt.Sub(t.clock.Now()).Milliseconds(), 0)
		s.TurnEndsAt = &endsAt
		s.TurnRemainingMs = &remaining
	}

	return s
}

// Player returns the snapshot entry for id
func (s Snapshot) Player(id string) (PlayerState, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// TotalChips sums every stack plus every outstanding bet
func (s Snapshot) TotalChips() int {
	total := 0
	for _, p := range s.Players {
		total += p.Chips + p.Bet
	}
	return total
}
