package app

import "onecard/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted   EventKind = "game_started"
	EventProbeAsked    EventKind = "probe_asked"
	EventClueGiven     EventKind = "clue_given"
	EventEngineShrunk  EventKind = "engine_shrunk"
	EventProbingEnded  EventKind = "probing_ended"
	EventGuessVerified EventKind = "guess_verified"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	GameID    string
	Phase     domain.Phase
	Cards     int
	ProbeSize int
}

type ProbeAskedPayload struct {
	Probe domain.Probe
}

type ClueGivenPayload struct {
	Clue   domain.Clue
	Probes int
}

// EngineShrunkPayload reports that the engine had to drop assignments to
// answer, which happens when probes are too small to keep both seeds alive.
type EngineShrunkPayload struct {
	Dropped int
	Live    int
}

type ProbingEndedPayload struct {
	Probes int
}

type GuessVerifiedPayload struct {
	Verdict domain.Verdict
	Probes  int
}
