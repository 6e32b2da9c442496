package gameloop

import (
	"errors"
	"time"

	"github.com/martinemde/gamepilot/outcomes"
)

// ErrNoFrame is returned by Execute when the emulator produced no frame; the
// loop skips the cycle rather than recording an unmeasurable action.
var ErrNoFrame = errors.New("emulator returned no frame")

// Evaluator executes actions against the emulator and measures their effect.
// The press/release pair always completes once started; cancellation is the
// caller's concern at the checkpoint before Execute.
type Evaluator struct {
	emu    Emulator
	hold   time.Duration
	settle time.Duration
}

// NewEvaluator creates an evaluator with the given button hold and
// post-release settle durations.
func NewEvaluator(emu Emulator, hold, settle time.Duration) *Evaluator {
	return &Evaluator{emu: emu, hold: hold, settle: settle}
}

// Execute presses the decided button, measures the before/after frames, and
// returns the resulting record. Success is a coarse effect-detection proxy:
// any pixel changed. It is not a correctness oracle for game progress.
func (e *Evaluator) Execute(gameID string, decision Decision) (outcomes.ActionRecord, error) {
	before := e.emu.ScreenFrame()
	if before == nil {
		return outcomes.ActionRecord{}, ErrNoFrame
	}

	e.emu.PressButton(decision.Action)
	time.Sleep(e.hold)
	e.emu.ReleaseButton(decision.Action)
	time.Sleep(e.settle)

	after := e.emu.ScreenFrame()
	if after == nil {
		return outcomes.ActionRecord{}, ErrNoFrame
	}

	delta := pixelDelta(before, after)
	return outcomes.ActionRecord{
		GameID:      gameID,
		Timestamp:   time.Now(),
		Action:      string(decision.Action),
		BeforeFrame: before,
		AfterFrame:  after,
		PixelDelta:  delta,
		Success:     delta > 0,
		Observation: decision.Observation,
		Reasoning:   decision.Reasoning,
		RawOutput:   decision.Raw,
	}, nil
}

// pixelDelta counts differing byte positions between two frames. Buffers of
// different lengths contribute their length difference. Deterministic for a
// given pair of frames.
func pixelDelta(before, after []byte) int {
	short := len(before)
	if len(after) < short {
		short = len(after)
	}
	delta := 0
	for i := 0; i < short; i++ {
		if before[i] != after[i] {
			delta++
		}
	}
	if len(before) > short {
		delta += len(before) - short
	}
	if len(after) > short {
		delta += len(after) - short
	}
	return delta
}
