package domain

// Client -> Server
const (
	OpCodeProbe   int64 = 1
	OpCodeGuess   int64 = 2
	OpCodeNewGame int64 = 3
)

// Server -> Client
const (
	OpCodeGameStarted  int64 = 100
	OpCodeClue         int64 = 101
	OpCodeVerdict      int64 = 102
	OpCodeState        int64 = 103
	OpCodeEngineShrunk int64 = 104
	OpCodeError        int64 = 500
)

const (
	// MaxUniverseCards bounds the full permutation universe (t! assignments).
	MaxUniverseCards = 7
	// MaxNamedCards is the number of cards that have a single letter name.
	MaxNamedCards = len(cardLetters)
)
