package gameloop

import (
	"fmt"
	"sync"
)

// GuardConfig tunes the repetition guard heuristics.
type GuardConfig struct {
	ConsecutiveThreshold int // consecutive repeats before advising a change
	SaturationCeiling    int // per-action count that wipes the window
}

// DefaultGuardConfig returns the default heuristics.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		ConsecutiveThreshold: 2,
		SaturationCeiling:    8,
	}
}

// RepetitionGuard tracks recent action frequency for the current run and
// produces advisory text when the agent looks stuck. It never vetoes the
// model's choice; advisories are injected into the next prompt as plain
// text. One instance per session.
type RepetitionGuard struct {
	cfg         GuardConfig
	mu          sync.Mutex
	counts      map[Action]int
	last        Action
	consecutive int
}

// NewRepetitionGuard creates a guard with empty counts.
func NewRepetitionGuard(cfg GuardConfig) *RepetitionGuard {
	if cfg.ConsecutiveThreshold <= 0 {
		cfg = DefaultGuardConfig()
	}
	return &RepetitionGuard{
		cfg:    cfg,
		counts: make(map[Action]int),
	}
}

// Record notes one executed action. If any count exceeds the saturation
// ceiling the whole window is wiped, so stale bias cannot outlive a loop
// the agent has organically broken out of.
func (g *RepetitionGuard) Record(action Action) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counts[action]++
	if action == g.last {
		g.consecutive++
	} else {
		g.last = action
		g.consecutive = 1
	}

	if g.counts[action] > g.cfg.SaturationCeiling {
		g.counts = make(map[Action]int)
		g.last = ""
		g.consecutive = 0
	}
}

// LastAction returns the most recently recorded action, if any.
func (g *RepetitionGuard) LastAction() Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Advice returns advisory text when the recent history indicates the agent
// is stuck, or "" when no advisory applies.
func (g *RepetitionGuard) Advice() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.consecutive >= g.cfg.ConsecutiveThreshold && g.last != "" {
		return fmt.Sprintf(
			"You have chosen %s %d times in a row without progress. Try a different action.",
			g.last, g.consecutive)
	}

	// Two actions alternating accounts for the entire window.
	if len(g.counts) == 2 {
		actions := make([]Action, 0, 2)
		for action := range g.counts {
			if g.counts[action] < 2 {
				return ""
			}
			actions = append(actions, action)
		}
		if actions[0] > actions[1] {
			actions[0], actions[1] = actions[1], actions[0]
		}
		return fmt.Sprintf(
			"You appear stuck alternating between %s and %s. Choose something else.",
			actions[0], actions[1])
	}

	return ""
}

// Counts returns a copy of the current action counts.
func (g *RepetitionGuard) Counts() map[Action]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	counts := make(map[Action]int, len(g.counts))
	for action, n := range g.counts {
		counts[action] = n
	}
	return counts
}

// Reset wipes all tracked state. Called when a session (re)starts.
func (g *RepetitionGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts = make(map[Action]int)
	g.last = ""
	g.consecutive = 0
}
