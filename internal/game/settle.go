package game

// Settle decides a player's outcome against the dealer's final hand
func Settle(player Hand, busted bool, dealer Hand) Result {
	if busted {
		return Busted
	}

	d := dealer.Value()
	s := player.Value()

	switch {
	case d > 21 || s > d:
		return Win
	case s == d:
		return Push
	default:
		return Lose
	}
}

// Payout is what goes back to the player's stack for a settled bet. The bet
// itself was taken from the stack when it was placed.
func Payout(result Result, bet int) int {
	switch result {
	case Win:
		return bet * 2
	case Push:
		return bet
	default:
		return 0
	}
}
