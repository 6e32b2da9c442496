package outcomes

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// storeFactories lets every test run against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := OpenSQLite(filepath.Join(t.TempDir(), "outcomes.db"))
			if err != nil {
				t.Fatalf("failed to open sqlite store: %v", err)
			}
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

func record(gameID, action string, success bool) ActionRecord {
	delta := 0
	if success {
		delta = 42
	}
	return ActionRecord{
		GameID:      gameID,
		Timestamp:   time.Now(),
		Action:      action,
		BeforeFrame: []byte{1, 2, 3},
		AfterFrame:  []byte{1, 2, 4},
		PixelDelta:  delta,
		Success:     success,
	}
}

func TestStoreSummarizeEmpty(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			digest, err := store.Summarize(context.Background(), "game-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if digest != "No data yet" {
				t.Errorf("expected empty digest, got %q", digest)
			}
		})
	}
}

func TestStoreAppendAndSummarize(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			if err := store.Append(ctx, record("game-1", "A", true)); err != nil {
				t.Fatalf("append failed: %v", err)
			}
			if err := store.Append(ctx, record("game-1", "A", false)); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			digest, err := store.Summarize(ctx, "game-1")
			if err != nil {
				t.Fatalf("summarize failed: %v", err)
			}
			if digest != "A: 1/2" {
				t.Errorf("expected %q, got %q", "A: 1/2", digest)
			}
		})
	}
}

func TestStoreAllForPreservesOrder(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			actions := []string{"UP", "DOWN", "START"}
			base := time.Now()
			for i, action := range actions {
				r := record("game-1", action, false)
				r.Timestamp = base.Add(time.Duration(i) * time.Millisecond)
				if err := store.Append(ctx, r); err != nil {
					t.Fatalf("append failed: %v", err)
				}
			}

			records, err := store.AllFor(ctx, "game-1")
			if err != nil {
				t.Fatalf("allFor failed: %v", err)
			}
			if len(records) != len(actions) {
				t.Fatalf("expected %d records, got %d", len(actions), len(records))
			}
			for i, r := range records {
				if r.Action != actions[i] {
					t.Errorf("record %d: expected action %q, got %q", i, actions[i], r.Action)
				}
				if r.ID == "" {
					t.Error("expected record ID to be assigned")
				}
			}
		})
	}
}

func TestStoreGameIsolation(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			if err := store.Append(ctx, record("game-1", "A", true)); err != nil {
				t.Fatalf("append failed: %v", err)
			}
			if err := store.Append(ctx, record("game-2", "B", true)); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			records, err := store.AllFor(ctx, "game-1")
			if err != nil {
				t.Fatalf("allFor failed: %v", err)
			}
			if len(records) != 1 || records[0].Action != "A" {
				t.Errorf("game-1 history polluted: %+v", records)
			}

			stats, err := store.Stats(ctx, "game-2")
			if err != nil {
				t.Fatalf("stats failed: %v", err)
			}
			if _, ok := stats["A"]; ok {
				t.Error("game-2 stats contain game-1 action")
			}
		})
	}
}

func TestStoreClear(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			if err := store.Append(ctx, record("game-1", "A", true)); err != nil {
				t.Fatalf("append failed: %v", err)
			}
			if err := store.Append(ctx, record("game-2", "B", true)); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			if err := store.Clear(ctx, "game-1"); err != nil {
				t.Fatalf("clear failed: %v", err)
			}

			digest, err := store.Summarize(ctx, "game-1")
			if err != nil {
				t.Fatalf("summarize failed: %v", err)
			}
			if digest != "No data yet" {
				t.Errorf("expected cleared digest, got %q", digest)
			}

			// Other games are untouched.
			records, err := store.AllFor(ctx, "game-2")
			if err != nil {
				t.Fatalf("allFor failed: %v", err)
			}
			if len(records) != 1 {
				t.Errorf("expected game-2 history to survive, got %d records", len(records))
			}
		})
	}
}

func TestStoreRoundTripsFrames(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			r := record("game-1", "SELECT", true)
			r.Observation = "menu opened"
			r.Reasoning = "trying the menu"
			r.RawOutput = "DECISION: SELECT"
			if err := store.Append(ctx, r); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			records, err := store.AllFor(ctx, "game-1")
			if err != nil {
				t.Fatalf("allFor failed: %v", err)
			}
			got := records[0]
			if string(got.BeforeFrame) != string(r.BeforeFrame) {
				t.Error("before frame did not round trip")
			}
			if string(got.AfterFrame) != string(r.AfterFrame) {
				t.Error("after frame did not round trip")
			}
			if got.Observation != "menu opened" || got.Reasoning != "trying the menu" || got.RawOutput != "DECISION: SELECT" {
				t.Errorf("text fields did not round trip: %+v", got)
			}
			if got.Success != (got.PixelDelta > 0) {
				t.Error("success flag inconsistent with pixel delta")
			}
		})
	}
}

func TestStatsDigest(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  string
	}{
		{"empty", Stats{}, "No data yet"},
		{"single", Stats{"A": {Attempts: 2, Successes: 1}}, "A: 1/2"},
		{"sorted", Stats{
			"UP": {Attempts: 4, Successes: 1},
			"A":  {Attempts: 5, Successes: 3},
		}, "A: 3/5, UP: 1/4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Digest(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
