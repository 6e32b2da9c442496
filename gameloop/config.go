package gameloop

import "time"

// Config holds engine configuration. NewEngine substitutes DefaultConfig
// when given a nil config.
type Config struct {
	Vocabulary        Vocabulary    // closed action set; must be non-empty to start
	Model             string        // default model identifier
	Temperature       float64       // sampling temperature
	MaxTokens         int           // completion token budget
	HoldDuration      time.Duration // how long a button is held
	SettleDuration    time.Duration // wait after release before the after frame
	ReadinessPoll     time.Duration // wait between emulator readiness checks
	FatalErrorCeiling int           // consecutive non-rate-limit backend errors before self-stop
	EventBuffer       int           // event channel capacity
	Backoff           BackoffConfig
	Guard             GuardConfig
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Vocabulary:        DefaultVocabulary(),
		Model:             "gpt-4o-mini",
		Temperature:       0.7,
		MaxTokens:         350,
		HoldDuration:      150 * time.Millisecond,
		SettleDuration:    250 * time.Millisecond,
		ReadinessPoll:     500 * time.Millisecond,
		FatalErrorCeiling: 5,
		EventBuffer:       256,
		Backoff:           DefaultBackoffConfig(),
		Guard:             DefaultGuardConfig(),
	}
}

// Session identifies one loop run against one game.
type Session struct {
	GameID        string // stable per-game identity, e.g. a content hash of the ROM
	Model         string // optional override of Config.Model
	VisionCapable bool   // whether the chosen model accepts images
}
