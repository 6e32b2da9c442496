package outcomes

import "context"

// Store is the persistent, append-only per-game log of action records.
// Implementations must key every record by game identity so that histories
// from different games never mix. The decision loop is the sole writer;
// readers may observe eventually-consistent state.
type Store interface {
	// Append writes one record. Records are never mutated after this call.
	Append(ctx context.Context, record ActionRecord) error

	// AllFor returns every record for gameID in insertion order.
	AllFor(ctx context.Context, gameID string) ([]ActionRecord, error)

	// Stats returns per-action attempt/success tallies for gameID.
	Stats(ctx context.Context, gameID string) (Stats, error)

	// Summarize returns a text digest of the stats for gameID,
	// degrading to "No data yet" when the history is empty.
	Summarize(ctx context.Context, gameID string) (string, error)

	// Clear removes all records and tallies for gameID.
	Clear(ctx context.Context, gameID string) error

	// Close releases any resources held by the store.
	Close() error
}
