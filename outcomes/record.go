package outcomes

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ActionRecord is one executed action and its measured effect. Records are
// immutable once written; the store is their sole owner.
type ActionRecord struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	BeforeFrame []byte    `json:"before_frame,omitempty"`
	AfterFrame  []byte    `json:"after_frame,omitempty"`
	PixelDelta  int       `json:"pixel_delta"`
	Success     bool      `json:"success"`
	Observation string    `json:"observation,omitempty"`
	Reasoning   string    `json:"reasoning,omitempty"`
	RawOutput   string    `json:"raw_output,omitempty"`
}

// Tally counts attempts and successes for a single action.
type Tally struct {
	Attempts  int `json:"attempts"`
	Successes int `json:"successes"`
}

// Stats maps action identifiers to their tallies. Derived data, never stored
// as the source of truth.
type Stats map[string]Tally

// Digest renders the stats as a compact text summary suitable for prompt
// context, e.g. "A: 1/2, START: 3/5". Actions are sorted for determinism.
// Returns "No data yet" when the stats are empty.
func (s Stats) Digest() string {
	if len(s) == 0 {
		return "No data yet"
	}
	actions := make([]string, 0, len(s))
	for action := range s {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		t := s[action]
		parts = append(parts, fmt.Sprintf("%s: %d/%d", action, t.Successes, t.Attempts))
	}
	return strings.Join(parts, ", ")
}

// Record folds one action outcome into the stats.
func (s Stats) Record(action string, success bool) {
	t := s[action]
	t.Attempts++
	if success {
		t.Successes++
	}
	s[action] = t
}
