package game

import "fmt"

// Phase is the stage of the round the table is in
type Phase int

const (
	Lobby Phase = iota
	Betting
	Playing
	DealerTurn
	Finished
)

// String returns the wire name of the phase
func (p Phase) String() string {
	switch p {
	case Lobby:
		return "lobby"
	case Betting:
		return "betting"
	case Playing:
		return "playing"
	case DealerTurn:
		return "dealer"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{Lobby, Betting, Playing, DealerTurn, Finished} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", text)
}

// Result is a player's outcome for the last settled round
type Result string

const (
	NoResult Result = ""
	Win      Result = "Win"
	Lose     Result = "Lose"
	Push     Result = "Push"
	Busted   Result = "Busted"
)

// MarshalJSON writes null for a player with no result yet
func (r Result) MarshalJSON() ([]byte, error) {
	if r == NoResult {
		return []byte("null"), nil
	}
	return []byte(`"` + string(r) + `"`), nil
}

// UnmarshalJSON accepts null or one of the result names
func (r *Result) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*r = NoResult
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid result: %s", s)
	}
	switch res := Result(s[1 : len(s)-1]); res {
	case Win, Lose, Push, Busted, NoResult:
		*r = res
		return nil
	default:
		return fmt.Errorf("unknown result: %s", s)
	}
}
