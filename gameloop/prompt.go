package gameloop

import (
	"fmt"
	"strings"

	"github.com/martinemde/gamepilot/inference"
)

// PromptContext carries the per-cycle fields woven into every prompt.
type PromptContext struct {
	GameID      string
	LastAction  Action
	Advice      string
	StatsDigest string
}

// PromptBuilder assembles inference requests from the current frame and
// decision context, choosing vision or text-only phrasing.
type PromptBuilder struct {
	vocab       Vocabulary
	model       string
	temperature *float64
	maxTokens   *int
}

// NewPromptBuilder creates a builder for the given vocabulary and sampling
// parameters.
func NewPromptBuilder(vocab Vocabulary, model string, temperature float64, maxTokens int) *PromptBuilder {
	return &PromptBuilder{
		vocab:       vocab,
		model:       model,
		temperature: &temperature,
		maxTokens:   &maxTokens,
	}
}

// Build assembles the request. When visionOK and a frame is available the
// frame is embedded; otherwise the request degrades to a text-only
// description. Degradation trades fidelity for availability.
func (b *PromptBuilder) Build(frame []byte, pctx PromptContext, visionOK bool) inference.Request {
	system := fmt.Sprintf(
		"You are playing a game on a console with these buttons: %s.\n"+
			"Each turn, choose exactly one button to press.\n"+
			"Reply in this format:\n"+
			"OBSERVATION: <what you see>\n"+
			"REASONING: <why this button>\n"+
			"DECISION: <BUTTON>",
		b.vocab)

	instruction := b.instruction(pctx, visionOK && len(frame) > 0)

	var user inference.Message
	if visionOK && len(frame) > 0 {
		user = inference.VisionMessage(instruction, frame, "image/png")
	} else {
		user = inference.UserMessage(instruction)
	}

	return inference.Request{
		Model:       b.model,
		Messages:    []inference.Message{inference.SystemMessage(system), user},
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
	}
}

func (b *PromptBuilder) instruction(pctx PromptContext, withImage bool) string {
	var sb strings.Builder
	if withImage {
		sb.WriteString("Here is the current screen. Decide which button to press next.\n")
	} else {
		sb.WriteString("No screen image is available this turn. ")
		sb.WriteString("Decide which button to press next based on the history below.\n")
	}

	fmt.Fprintf(&sb, "Game: %s\n", pctx.GameID)
	if pctx.LastAction != "" {
		fmt.Fprintf(&sb, "Last action: %s\n", pctx.LastAction)
	}
	if pctx.StatsDigest != "" {
		fmt.Fprintf(&sb, "Action history (successes/attempts): %s\n", pctx.StatsDigest)
	}
	if pctx.Advice != "" {
		fmt.Fprintf(&sb, "Advice: %s\n", pctx.Advice)
	}
	return sb.String()
}
