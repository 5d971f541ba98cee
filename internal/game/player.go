package game

// Player is a seat at the table
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hand   Hand   `json:"hand"`
	Chips  int    `json:"chips"`
	Bet    int    `json:"bet"`
	Stood  bool   `json:"stood"`
	Busted bool   `json:"busted"`
	Result Result `json:"result"`
}

// CanBet reports whether the player still has chips to wager
func (p *Player) CanBet() bool {
	return p.Chips > 0
}

func (p *Player) resetForDeal() {
	p.Hand = nil
	p.Stood = false
	p.Busted = false
	p.Result = NoResult
}

// Dealer holds the house hand
type Dealer struct {
	Hand Hand `json:"hand"`
}
