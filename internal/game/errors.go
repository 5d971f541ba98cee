package game

import "errors"

var (
	// ErrUnknownPlayer is returned when the player ID was never issued by Join
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrWrongPhase is returned when the action is not valid in the current phase
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrNotYourTurn is returned when someone other than the current player acts
	ErrNotYourTurn = errors.New("not this player's turn")
	// ErrInvalidBet is returned for bets outside (0, chips]
	ErrInvalidBet = errors.New("bet must be positive and no more than the player's chips")
	// ErrAlreadyBet is returned when a player bets twice in one round
	ErrAlreadyBet = errors.New("player has already bet this round")
	// ErrNoPlayers is returned when starting a table nobody has joined
	ErrNoPlayers = errors.New("no players at the table")
)
