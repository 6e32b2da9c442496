package gameloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/martinemde/gamepilot/inference"
	"github.com/martinemde/gamepilot/outcomes"
)

// LoopState represents the current lifecycle state of the decision loop.
type LoopState string

const (
	StateIdle     LoopState = "idle"
	StateThinking LoopState = "thinking"
	StateActing   LoopState = "acting"
	StateCooling  LoopState = "cooling"
)

// PreconditionError reports that the loop cannot start. Fatal to the Start
// call, not the process.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return "cannot start loop: " + e.Message
}

// Engine orchestrates the decision loop: pacing, prompting, parsing,
// acting, measuring, and recording. One engine drives one session at a
// time; backoff and repetition state are constructed fresh per session.
type Engine struct {
	id      string
	cfg     Config
	emu     Emulator
	client  *inference.Client
	store   outcomes.Store
	logger  *log.Logger
	emitter *EventEmitter

	mu      sync.Mutex
	state   LoopState
	running bool
	ctx     context.Context
	cancel  context.CancelFunc

	// Per-session collaborators, rebuilt by Start.
	backoff   *Backoff
	guard     *RepetitionGuard
	builder   *PromptBuilder
	parser    *Parser
	evaluator *Evaluator
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the diagnostic logger. Events remain the primary
// reporting channel; the logger defaults to discard.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over the given emulator, inference client and
// outcome store. A nil config uses DefaultConfig.
func NewEngine(emu Emulator, client *inference.Client, store outcomes.Store, config *Config, opts ...EngineOption) *Engine {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}

	e := &Engine{
		id:     uuid.New().String(),
		cfg:    cfg,
		emu:    emu,
		client: client,
		store:  store,
		logger: log.New(io.Discard),
		state:  StateIdle,
	}
	e.emitter = NewEventEmitter(e.id, cfg.EventBuffer)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the engine identifier.
func (e *Engine) ID() string { return e.id }

// State returns the current loop state.
func (e *Engine) State() LoopState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsRunning reports whether a session loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Events returns the event channel for the host application.
func (e *Engine) Events() <-chan Event {
	return e.emitter.Events()
}

// Start begins the decision loop for the given session. It fails with a
// PreconditionError when the emulator is not ready, the vocabulary is
// empty, or the session has no game identity.
func (e *Engine) Start(session Session) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return &PreconditionError{Message: "loop is already running"}
	}
	if e.emu == nil || !e.emu.Ready() {
		return &PreconditionError{Message: "emulation engine is not ready"}
	}
	if len(e.cfg.Vocabulary) == 0 {
		return &PreconditionError{Message: "action vocabulary is empty"}
	}
	if session.GameID == "" {
		return &PreconditionError{Message: "session has no game identity"}
	}
	if e.client == nil {
		return &PreconditionError{Message: "no inference client configured"}
	}
	if e.store == nil {
		return &PreconditionError{Message: "no outcome store configured"}
	}

	model := session.Model
	if model == "" {
		model = e.cfg.Model
	}

	e.backoff = NewBackoff(e.cfg.Backoff)
	e.guard = NewRepetitionGuard(e.cfg.Guard)
	e.builder = NewPromptBuilder(e.cfg.Vocabulary, model, e.cfg.Temperature, e.cfg.MaxTokens)
	e.parser = NewParser(e.cfg.Vocabulary)
	e.evaluator = NewEvaluator(e.emu, e.cfg.HoldDuration, e.cfg.SettleDuration)

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.running = true
	e.emitter.Emit(EventLoopStart, map[string]interface{}{
		"game_id": session.GameID,
		"model":   model,
	})
	e.logger.Info("decision loop started", "game_id", session.GameID, "model", model)

	go e.run(session)
	return nil
}

// Stop signals the loop to halt at its next checkpoint. Idempotent, safe
// from any goroutine, and never blocks waiting for the loop to quiesce.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Close stops the loop and closes the event channel.
func (e *Engine) Close() {
	e.Stop()
	e.emitter.Close()
}

func (e *Engine) transition(to LoopState) {
	e.mu.Lock()
	from := e.state
	if from == to {
		e.mu.Unlock()
		return
	}
	e.state = to
	e.mu.Unlock()
	e.emitter.Emit(EventStateChange, map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
}

func (e *Engine) stopped() bool {
	select {
	case <-e.ctx.Done():
		return true
	default:
		return false
	}
}

// sleep waits d, returning false if the loop was stopped first.
func (e *Engine) sleep(d time.Duration) bool {
	if d <= 0 {
		return !e.stopped()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-e.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// run is the cycle loop. Failures never escape: each cycle either advances,
// skips, cools down, or terminates the loop through its own state.
func (e *Engine) run(session Session) {
	var totalUsage inference.Usage
	defer func() {
		e.transition(StateIdle)
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		e.emitter.Emit(EventLoopStop, map[string]interface{}{
			"game_id": session.GameID,
			"usage":   totalUsage,
		})
		e.logger.Info("decision loop stopped", "game_id", session.GameID)
	}()

	consecutiveErrors := 0
	cycle := 0

	for {
		if e.stopped() {
			return
		}
		cycle++
		e.emitter.Emit(EventCycleStart, map[string]interface{}{"cycle": cycle})

		// Readiness is polled, never counted as a failure.
		if !e.emu.Ready() {
			if !e.sleep(e.cfg.ReadinessPoll) {
				return
			}
			continue
		}

		// Pace the cycle by the persistent delay.
		e.transition(StateThinking)
		if !e.sleep(e.backoff.NextDelay()) {
			return
		}

		frame := e.emu.ScreenFrame()
		if frame == nil {
			// Null frames are tolerated by skipping the cycle.
			e.emitter.Emit(EventWarning, map[string]interface{}{
				"warning": "emulator returned no frame",
			})
			if !e.sleep(e.cfg.ReadinessPoll) {
				return
			}
			continue
		}
		visionOK := session.VisionCapable && !e.backoff.VisionDegraded()

		pctx := e.promptContext(session)
		req := e.builder.Build(frame, pctx, visionOK)

		resp, err := e.completeWithRetry(req, visionOK)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				return
			case inference.IsAuthFailure(err):
				e.emitter.Emit(EventError, map[string]interface{}{
					"error": err.Error(),
					"fatal": true,
				})
				e.logger.Error("authentication failure, stopping loop", "error", err)
				return
			case errors.Is(err, ErrRetryExhausted):
				// Recoverable: the persistent delay was ratcheted hard.
				e.emitter.Emit(EventWarning, map[string]interface{}{
					"warning": "rate limit retries exhausted, slowing down",
				})
				e.logger.Warn("rate limit retries exhausted", "next_delay", e.backoff.NextDelay())
				continue
			default:
				e.backoff.OnFailure()
				consecutiveErrors++
				e.emitter.Emit(EventError, map[string]interface{}{
					"error":       err.Error(),
					"consecutive": consecutiveErrors,
				})
				if consecutiveErrors >= e.cfg.FatalErrorCeiling {
					e.emitter.Emit(EventError, map[string]interface{}{
						"error": fmt.Sprintf("%d consecutive backend failures, stopping loop", consecutiveErrors),
						"fatal": true,
					})
					e.logger.Error("backend failure ceiling reached, stopping loop", "failures", consecutiveErrors)
					return
				}
				continue
			}
		}

		e.backoff.OnSuccess()
		consecutiveErrors = 0
		totalUsage = totalUsage.Add(resp.Usage)

		decision, ok := e.parser.Parse(resp.Text())
		if !ok {
			// Unparseable output is a normal outcome, not a backend error.
			e.emitter.Emit(EventInvalidReply, map[string]interface{}{
				"raw": resp.Text(),
			})
			e.logger.Debug("no valid action token in reply", "raw", resp.Text())
			continue
		}

		e.emitter.Emit(EventDecision, map[string]interface{}{
			"action":    string(decision.Action),
			"reasoning": decision.Reasoning,
			"usage":     resp.Usage,
		})

		// Checkpoint before touching the controls.
		if e.stopped() {
			return
		}
		e.transition(StateActing)

		record, err := e.evaluator.Execute(session.GameID, decision)
		if err != nil {
			e.emitter.Emit(EventWarning, map[string]interface{}{
				"warning": err.Error(),
			})
			e.transition(StateThinking)
			continue
		}

		// The press/release pair completed, so its measured outcome is
		// persisted even when Stop landed mid-action.
		if err := e.store.Append(context.Background(), record); err != nil {
			e.emitter.Emit(EventWarning, map[string]interface{}{
				"warning": fmt.Sprintf("failed to record outcome: %v", err),
			})
			e.logger.Warn("failed to record outcome", "error", err)
		}
		e.guard.Record(decision.Action)

		e.emitter.Emit(EventActionExecuted, map[string]interface{}{
			"action":      string(decision.Action),
			"pixel_delta": record.PixelDelta,
			"success":     record.Success,
		})
		e.transition(StateThinking)
	}
}

// promptContext gathers the contextual fields for the next prompt.
func (e *Engine) promptContext(session Session) PromptContext {
	digest, err := e.store.Summarize(e.ctx, session.GameID)
	if err != nil {
		e.logger.Warn("failed to summarize outcomes", "error", err)
		digest = ""
	}

	advice := e.guard.Advice()
	if advice != "" {
		e.emitter.Emit(EventRepetition, map[string]interface{}{
			"advice": advice,
		})
	}

	return PromptContext{
		GameID:      session.GameID,
		LastAction:  e.guard.LastAction(),
		Advice:      advice,
		StatsDigest: digest,
	}
}

// completeWithRetry calls the backend, absorbing rate limits via the
// backoff controller. Cancellation is honored before every retry.
func (e *Engine) completeWithRetry(req inference.Request, vision bool) (*inference.Response, error) {
	resp, err := e.client.Complete(e.ctx, req)
	for inference.IsRateLimited(err) {
		if vision {
			e.backoff.NoteVisionRateLimit()
			if e.backoff.VisionDegraded() {
				e.emitter.Emit(EventVisionDegraded, map[string]interface{}{
					"reason": "consecutive vision rate limits, falling back to text-only prompts",
				})
			}
		}

		retryDelay, rerr := e.backoff.OnRateLimited()
		if rerr != nil {
			return nil, rerr
		}
		// Honor the backend's Retry-After when it asks for more.
		if hinted := time.Duration(inference.RetryAfterSeconds(err) * float64(time.Second)); hinted > retryDelay {
			retryDelay = hinted
		}

		e.transition(StateCooling)
		e.logger.Debug("rate limited, cooling down", "delay", retryDelay)
		if !e.sleep(retryDelay) {
			return nil, context.Canceled
		}
		e.transition(StateThinking)

		resp, err = e.client.Complete(e.ctx, req)
	}
	return resp, err
}
