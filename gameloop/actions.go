package gameloop

import "strings"

// Action is one control token from the closed vocabulary.
type Action string

const (
	ActionUp     Action = "UP"
	ActionDown   Action = "DOWN"
	ActionLeft   Action = "LEFT"
	ActionRight  Action = "RIGHT"
	ActionA      Action = "A"
	ActionB      Action = "B"
	ActionStart  Action = "START"
	ActionSelect Action = "SELECT"
)

// Vocabulary is the closed set of actions the agent may choose among.
// Tokens match case-insensitively; anything outside the set is invalid.
type Vocabulary []Action

// DefaultVocabulary returns the eight-button console vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ActionUp, ActionDown, ActionLeft, ActionRight,
		ActionA, ActionB, ActionStart, ActionSelect,
	}
}

// Contains reports whether token names an action in the vocabulary,
// ignoring case. The second return is the canonical action.
func (v Vocabulary) Contains(token string) (Action, bool) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	for _, action := range v {
		if string(action) == upper {
			return action, true
		}
	}
	return "", false
}

// String renders the vocabulary as a comma-separated list for prompts.
func (v Vocabulary) String() string {
	parts := make([]string, len(v))
	for i, action := range v {
		parts[i] = string(action)
	}
	return strings.Join(parts, ", ")
}
