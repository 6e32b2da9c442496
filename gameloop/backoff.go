package gameloop

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

// ErrRetryExhausted is returned by OnRateLimited when the per-burst retry
// budget is spent. Callers must treat it as recoverable: skip the cycle and
// let the ratcheted persistent delay slow the loop down.
var ErrRetryExhausted = errors.New("rate limit retry attempts exhausted")

// BackoffConfig tunes the backoff controller.
type BackoffConfig struct {
	FloorDelay             time.Duration // baseline inter-cycle delay
	PersistentCap          time.Duration // cap while retries remain
	ExhaustedCap           time.Duration // cap after retry exhaustion
	GrowthFactor           float64       // persistent delay growth per rate limit
	ExhaustedFactor        float64       // persistent delay growth on exhaustion
	DecayFactor            float64       // persistent delay decay per success
	RetryBase              float64       // per-attempt retry base delay in seconds
	RetryMultiplier        float64       // per-attempt exponential factor
	MaxAttempts            int           // retry attempts per burst
	VisionFailureThreshold int           // consecutive vision rate limits before degrading
}

// DefaultBackoffConfig returns the default policy. The 3 second floor
// reflects that image-bearing requests are expensive.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		FloorDelay:             3000 * time.Millisecond,
		PersistentCap:          15000 * time.Millisecond,
		ExhaustedCap:           60000 * time.Millisecond,
		GrowthFactor:           1.5,
		ExhaustedFactor:        3.0,
		DecayFactor:            0.9,
		RetryBase:              1.0,
		RetryMultiplier:        2.0,
		MaxAttempts:            3,
		VisionFailureThreshold: 2,
	}
}

// Backoff tracks the persistent inter-cycle delay and per-burst retry state.
// Separating the two lets the loop self-tune its baseline pace to the
// backend's actual rate limit while still recovering quickly from blips.
// One instance per session; never shared across game identities.
type Backoff struct {
	cfg            BackoffConfig
	mu             sync.Mutex
	delay          time.Duration
	attempt        int // rate-limit retries consumed in the current burst
	failures       int
	visionFailures int
}

// NewBackoff creates a controller starting at the configured floor delay.
func NewBackoff(cfg BackoffConfig) *Backoff {
	if cfg.FloorDelay <= 0 {
		cfg = DefaultBackoffConfig()
	}
	return &Backoff{cfg: cfg, delay: cfg.FloorDelay}
}

// NextDelay returns the current persistent inter-cycle delay.
func (b *Backoff) NextDelay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delay
}

// OnSuccess relaxes the persistent delay back toward the floor and resets
// all failure counters.
func (b *Backoff) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	decayed := time.Duration(float64(b.delay) * b.cfg.DecayFactor)
	if decayed < b.cfg.FloorDelay {
		decayed = b.cfg.FloorDelay
	}
	b.delay = decayed
	b.attempt = 0
	b.failures = 0
	b.visionFailures = 0
}

// OnRateLimited records one rate-limited attempt. It grows the persistent
// delay and returns the jittered wait before the next retry. Once the burst
// budget is spent it ratchets the persistent delay hard and returns
// ErrRetryExhausted.
func (b *Backoff) OnRateLimited() (time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.attempt >= b.cfg.MaxAttempts {
		b.attempt = 0
		b.delay = capDelay(time.Duration(float64(b.delay)*b.cfg.ExhaustedFactor), b.cfg.ExhaustedCap)
		return 0, ErrRetryExhausted
	}

	b.delay = capDelay(time.Duration(float64(b.delay)*b.cfg.GrowthFactor), b.cfg.PersistentCap)
	delay := b.retryDelay(b.attempt)
	b.attempt++
	return delay, nil
}

// OnFailure records a non-rate-limit failure, ending any retry burst.
func (b *Backoff) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.attempt = 0
}

// NoteVisionRateLimit records a rate limit hit by a vision-capable request.
func (b *Backoff) NoteVisionRateLimit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visionFailures++
}

// VisionDegraded reports whether vision requests have been rate limited
// often enough that the loop should fall back to text-only prompts.
func (b *Backoff) VisionDegraded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visionFailures > b.cfg.VisionFailureThreshold
}

// ConsecutiveFailures returns the failure count since the last success.
func (b *Backoff) ConsecutiveFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// retryDelay computes the per-attempt wait: base * multiplier^attempt plus
// up to 25% upward jitter. Upward-only jitter keeps successive delays
// strictly increasing while still desynchronizing concurrent loops.
func (b *Backoff) retryDelay(attempt int) time.Duration {
	seconds := b.cfg.RetryBase * math.Pow(b.cfg.RetryMultiplier, float64(attempt))
	seconds *= 1.0 + rand.Float64()*0.25
	return time.Duration(seconds * float64(time.Second))
}

func capDelay(d, limit time.Duration) time.Duration {
	if d > limit {
		return limit
	}
	return d
}
