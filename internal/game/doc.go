// Package game implements the blackjack table: one shared table that players
// join, bet at and play against the dealer.
//
// The main type is Table, which owns every piece of mutable state (players,
// turn order, dealer hand, deck, phase and the turn deadline) and runs the
// round state machine:
//
//	lobby -> betting -> playing -> dealer -> finished -> betting -> ...
//
// # Basic Usage
//
//	t := game.NewTable(logger, rng)
//	id := t.Join("Alice")
//	_ = t.Start()
//	_ = t.PlaceBet(id, 100) // last bet in deals the round
//	_ = t.Hit(id)
//	_ = t.Stand(id)
//	snap := t.Snapshot()
//
// Operations that are not legal right now (wrong phase, wrong player, bad
// bet) return one of the sentinel errors and leave the table untouched.
//
// # Timers
//
// Turn timeouts, dealer pacing and the pause after settlement are scheduled
// on an injected quartz.Clock. Tests pass quartz.NewMock(t) via WithClock and
// advance time explicitly:
//
//	clk := quartz.NewMock(t)
//	tbl := game.NewTable(logger, rng, game.WithClock(clk))
//	...
//	clk.Advance(15 * time.Second).MustWait(ctx) // current player auto-stands
//
// Scripted deals use WithDeck and deck.NewStacked.
package game
