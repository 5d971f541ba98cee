package deck

import rand "math/rand/v2"

// Size is the number of cards in a standard deck
const Size = 52

// Deck is an ordered pile of cards. Cards are drawn from the end of the
// slice, so the last card in the pile is the next one dealt.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full 52-card deck in suit/rank order. The deck is not
// shuffled; rng is used by Shuffle and Refill.
func New(rng *rand.Rand) *Deck {
	return &Deck{
		cards: standardCards(nil),
		rng:   rng,
	}
}

// NewShuffled creates a full deck and shuffles it
func NewShuffled(rng *rand.Rand) *Deck {
	d := New(rng)
	d.Shuffle()
	return d
}

// NewStacked creates a deck that deals exactly the given cards, in the
// given order. Used to script deals in tests.
func NewStacked(cards ...Card) *Deck {
	pile := make([]Card, len(cards))
	for i, c := range cards {
		pile[len(cards)-1-i] = c
	}
	return &Deck{cards: pile}
}

func standardCards(exclude map[Card]bool) []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			c := NewCard(suit, rank)
			if exclude[c] {
				continue
			}
			cards = append(cards, c)
		}
	}
	return cards
}

// Shuffle randomizes the order of cards in the deck (Fisher-Yates)
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.intN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) intN(n int) int {
	if d.rng == nil {
		return rand.IntN(n)
	}
	return d.rng.IntN(n)
}

// Draw removes and returns the next card
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}

	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card, true
}

// Refill replaces the remaining pile with every standard card not listed in
// inPlay and shuffles it. Used when a round runs the deck dry.
func (d *Deck) Refill(inPlay []Card) {
	exclude := make(map[Card]bool, len(inPlay))
	for _, c := range inPlay {
		exclude[c] = true
	}
	d.cards = standardCards(exclude)
	d.Shuffle()
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining pile, next card last
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
