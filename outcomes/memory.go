package outcomes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in memory. Useful for ephemeral sessions and
// tests; satisfies the same single-writer/multi-reader expectations as the
// SQLite store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]ActionRecord
	stats   map[string]Stats
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]ActionRecord),
		stats:   make(map[string]Stats),
	}
}

// Append writes one record.
func (s *MemoryStore) Append(_ context.Context, record ActionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	s.records[record.GameID] = append(s.records[record.GameID], record)

	stats, ok := s.stats[record.GameID]
	if !ok {
		stats = make(Stats)
		s.stats[record.GameID] = stats
	}
	stats.Record(record.Action, record.Success)
	return nil
}

// AllFor returns every record for gameID in insertion order.
func (s *MemoryStore) AllFor(_ context.Context, gameID string) ([]ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]ActionRecord, len(s.records[gameID]))
	copy(records, s.records[gameID])
	return records, nil
}

// Stats returns the aggregate tallies for gameID.
func (s *MemoryStore) Stats(_ context.Context, gameID string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(Stats, len(s.stats[gameID]))
	for action, tally := range s.stats[gameID] {
		stats[action] = tally
	}
	return stats, nil
}

// Summarize returns the text digest of the stats for gameID.
func (s *MemoryStore) Summarize(ctx context.Context, gameID string) (string, error) {
	stats, err := s.Stats(ctx, gameID)
	if err != nil {
		return "", err
	}
	return stats.Digest(), nil
}

// Clear removes all records and tallies for gameID.
func (s *MemoryStore) Clear(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, gameID)
	delete(s.stats, gameID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
