// Package outcomes is the knowledge base of the decision loop: an append-only,
// per-game log of executed actions and their measured effects, plus derived
// per-action success tallies.
//
// Two Store implementations are provided: SQLiteStore persists history in an
// embedded database keyed by game identity, and MemoryStore serves ephemeral
// sessions and tests. Both maintain a separate aggregate success-count view
// alongside the raw records.
//
//	store, err := outcomes.OpenSQLite("gamepilot.db")
//	...
//	digest, _ := store.Summarize(ctx, gameID) // "A: 1/2, START: 3/5"
//
// The decision loop is the sole writer. Presentation layers read concurrently
// and must tolerate eventually-consistent views.
package outcomes
