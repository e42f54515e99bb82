package domain

// Game is the authoritative state of one deduction game.
type Game struct {
	ID      string
	Rules   Rules
	Phase   Phase
	Engine  *Engine
	Clues   []Clue
	Pending Probe
	Guess   *Guess
	Verdict *Verdict
}

// Probes is the number of answered probes.
func (g *Game) Probes() int { return len(g.Clues) }

// Ended reports whether the guess has been verified.
func (g *Game) Ended() bool { return g.Phase == PhaseVerified }
