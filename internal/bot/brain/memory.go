package brain

import (
	"fmt"

	"onecard/internal/domain"
)

// ClueLog stores a strategy's private view of the game: the probe it is
// waiting on and every clue received so far, in order.
type ClueLog struct {
	clues   []domain.Clue
	byProbe map[string]int
	pending domain.Probe
	waiting bool
}

// NewClueLog initializes an empty log.
func NewClueLog() *ClueLog {
	return &ClueLog{byProbe: make(map[string]int)}
}

// Expect marks probe as asked and unanswered.
func (m *ClueLog) Expect(probe domain.Probe) {
	m.pending = probe.Canonical()
	m.waiting = true
}

// Pending returns the probe awaiting an answer, if any.
func (m *ClueLog) Pending() (domain.Probe, bool) {
	return m.pending, m.waiting
}

// Record stores the answer to the pending probe.
func (m *ClueLog) Record(clue domain.Clue) (domain.Clue, error) {
	probe := clue.Probe.Canonical()
	if !m.waiting || !probe.Equal(m.pending) {
		return domain.Clue{}, fmt.Errorf("%w: got %v, pending %v", domain.ErrUnexpectedClue, probe, m.pending)
	}
	clue = domain.Clue{Probe: probe, Value: clue.Value}
	m.clues = append(m.clues, clue)
	m.byProbe[probe.Key()] = clue.Value
	m.pending = nil
	m.waiting = false
	return clue, nil
}

// Lookup returns the recorded answer to probe.
func (m *ClueLog) Lookup(probe domain.Probe) (int, bool) {
	value, ok := m.byProbe[probe.Canonical().Key()]
	return value, ok
}

// Clues returns the clues in the order they were received.
func (m *ClueLog) Clues() []domain.Clue {
	out := make([]domain.Clue, len(m.clues))
	copy(out, m.clues)
	return out
}

func (m *ClueLog) Len() int { return len(m.clues) }
