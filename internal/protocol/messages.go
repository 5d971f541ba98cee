// Package protocol defines the JSON bodies exchanged between the table
// server and its clients.
package protocol

import "github.com/lox/blackjack/internal/game"

// Routes served by the table server
const (
	PathJoin   = "/join"
	PathStart  = "/start"
	PathBet    = "/place-bet"
	PathHit    = "/hit"
	PathStand  = "/stand"
	PathState  = "/state"
	PathHealth = "/health"
	PathWatch  = "/ws"
)

// Client -> Server

// Join is sent to take a seat
type Join struct {
	Name string `json:"name"`
}

// Bet places a wager during the betting phase
type Bet struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// Action is a hit or stand from the player whose turn it is
type Action struct {
	PlayerID string `json:"playerId"`
}

// Server -> Client

// Joined answers a Join with the new player's ID and the table
type Joined struct {
	PlayerID string        `json:"playerId"`
	Game     game.Snapshot `json:"game"`
}

// Error is returned for requests that could not be decoded at all.
// Well-formed but illegal actions are answered with the unchanged snapshot.
type Error struct {
	Error string `json:"error"`
}
