package gameloop

import (
	"regexp"
	"strings"
)

// Decision is a validated action extracted from model output.
type Decision struct {
	Action      Action
	Observation string
	Reasoning   string
	Raw         string
}

var (
	decisionRe    = regexp.MustCompile(`(?i)(?:decision|action|button)\s*[:=]\s*"?([A-Za-z]+)"?`)
	observationRe = regexp.MustCompile(`(?i)observation\s*:\s*([^\n]+)`)
	reasoningRe   = regexp.MustCompile(`(?i)(?:reasoning|thought)\s*:\s*([^\n]+)`)
)

// Parser extracts decisions from free-form model output against a closed
// vocabulary. An unparseable reply is a normal outcome, not an error.
type Parser struct {
	vocab   Vocabulary
	tokenRe *regexp.Regexp
}

// NewParser creates a parser for the given vocabulary.
func NewParser(vocab Vocabulary) *Parser {
	tokens := make([]string, len(vocab))
	for i, action := range vocab {
		tokens[i] = regexp.QuoteMeta(string(action))
	}
	return &Parser{
		vocab:   vocab,
		tokenRe: regexp.MustCompile(`(?i)\b(?:` + strings.Join(tokens, "|") + `)\b`),
	}
}

// Parse extracts a decision from raw model output. The labeled decision
// field wins; failing that, the first vocabulary token anywhere in the text
// is used. Returns false when no valid token is found.
func (p *Parser) Parse(raw string) (Decision, bool) {
	d := Decision{Raw: raw}

	if m := observationRe.FindStringSubmatch(raw); m != nil {
		d.Observation = strings.TrimSpace(m[1])
	}
	if m := reasoningRe.FindStringSubmatch(raw); m != nil {
		d.Reasoning = strings.TrimSpace(m[1])
	}

	// Labeled decision fields first; a label with an unknown token is
	// ignored rather than rejected, falling back to the full-text scan.
	for _, m := range decisionRe.FindAllStringSubmatch(raw, -1) {
		if action, ok := p.vocab.Contains(m[1]); ok {
			d.Action = action
			return d, true
		}
	}

	if token := p.tokenRe.FindString(raw); token != "" {
		if action, ok := p.vocab.Contains(token); ok {
			d.Action = action
			return d, true
		}
	}

	return Decision{Raw: raw}, false
}
