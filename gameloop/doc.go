// Package gameloop implements the decision loop that lets a language model
// play a game console through synthetic button presses.
//
// The loop paces requests against a rate-limited inference backend, converts
// free-text completions into validated button actions, measures each action's
// effect as a pixel delta between before/after frames, persists outcomes per
// game, and feeds that history plus anti-repetition advisories back into the
// next prompt.
//
// # Architecture
//
//   - Engine: the cycle orchestrator and state machine
//     (Idle -> Thinking -> Acting -> Thinking, with Cooling on backoff).
//   - Backoff: the adaptive rate controller separating the persistent
//     inter-cycle delay from per-attempt retry delays.
//   - RepetitionGuard: heuristics that detect repeated or alternating
//     actions and inject advisory text into the next prompt.
//   - PromptBuilder / Parser: request assembly and closed-vocabulary
//     decision extraction.
//   - Evaluator: button press execution and pixel-delta measurement.
//   - EventEmitter: non-blocking typed event stream for host applications.
//
// # Quick Start
//
//	client, _ := inference.NewClientFromConfig(cfg)
//	store, _ := outcomes.OpenSQLite("gamepilot.db")
//	engine := gameloop.NewEngine(emu, client, store, nil)
//	defer engine.Close()
//
//	err := engine.Start(gameloop.Session{
//	    GameID:        romHash,
//	    VisionCapable: true,
//	})
//	...
//	for event := range engine.Events() {
//	    fmt.Printf("[%s] %v\n", event.Kind, event.Data)
//	}
//
// Stop() may be called from any goroutine; the loop halts at its next
// checkpoint and an in-flight button press always completes first.
package gameloop
