package game

import (
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Hand is an ordered set of cards held by a player or the dealer
type Hand []deck.Card

// Value scores the hand. Aces count 11 and are demoted to 1, one at a time,
// while the total is over 21.
func (h Hand) Value() int {
	total, _ := h.score()
	return total
}

// IsSoft reports whether an ace is still being counted as 11
func (h Hand) IsSoft() bool {
	_, soft := h.score()
	return soft > 0
}

// IsBust reports whether the hand is over 21 with no ace left to demote
func (h Hand) IsBust() bool {
	return h.Value() > 21
}

func (h Hand) score() (total, softAces int) {
	for _, c := range h {
		total += c.Rank.Points()
		if c.IsAce() {
			softAces++
		}
	}

	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Clone returns a copy that does not share the backing array
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// String renders the hand as e.g. "A♠ 10♥"
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
