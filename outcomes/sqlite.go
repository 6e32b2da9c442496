package outcomes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS action_records (
	id           TEXT PRIMARY KEY,
	game_id      TEXT NOT NULL,
	ts           INTEGER NOT NULL,
	action       TEXT NOT NULL,
	before_frame BLOB,
	after_frame  BLOB,
	pixel_delta  INTEGER NOT NULL,
	success      INTEGER NOT NULL,
	observation  TEXT NOT NULL DEFAULT '',
	reasoning    TEXT NOT NULL DEFAULT '',
	raw_output   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_action_records_game ON action_records(game_id, ts);

CREATE TABLE IF NOT EXISTS action_stats (
	game_id   TEXT NOT NULL,
	action    TEXT NOT NULL,
	attempts  INTEGER NOT NULL DEFAULT 0,
	successes INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, action)
);
`

// SQLiteStore persists action records in an embedded SQLite database.
// The aggregate success-count table is maintained in the same transaction
// as each append so the two views never drift.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a store at path. Use ":memory:" for
// an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outcome database: %w", err)
	}
	// The loop is a single writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize outcome schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes one record and folds it into the aggregate tallies.
func (s *SQLiteStore) Append(ctx context.Context, record ActionRecord) error {
	if record.GameID == "" {
		return fmt.Errorf("record is missing a game id")
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO action_records
			(id, game_id, ts, action, before_frame, after_frame, pixel_delta, success, observation, reasoning, raw_output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.GameID, record.Timestamp.UnixNano(), record.Action,
		record.BeforeFrame, record.AfterFrame, record.PixelDelta, boolToInt(record.Success),
		record.Observation, record.Reasoning, record.RawOutput,
	)
	if err != nil {
		return fmt.Errorf("failed to append action record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO action_stats (game_id, action, attempts, successes)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(game_id, action) DO UPDATE SET
			attempts  = attempts + 1,
			successes = successes + excluded.successes`,
		record.GameID, record.Action, boolToInt(record.Success),
	)
	if err != nil {
		return fmt.Errorf("failed to update action stats: %w", err)
	}

	return tx.Commit()
}

// AllFor returns every record for gameID in insertion order.
func (s *SQLiteStore) AllFor(ctx context.Context, gameID string) ([]ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, ts, action, before_frame, after_frame, pixel_delta, success, observation, reasoning, raw_output
		FROM action_records WHERE game_id = ? ORDER BY ts, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query action records: %w", err)
	}
	defer rows.Close()

	var records []ActionRecord
	for rows.Next() {
		var r ActionRecord
		var ts int64
		var success int
		if err := rows.Scan(&r.ID, &r.GameID, &ts, &r.Action, &r.BeforeFrame, &r.AfterFrame,
			&r.PixelDelta, &success, &r.Observation, &r.Reasoning, &r.RawOutput); err != nil {
			return nil, fmt.Errorf("failed to scan action record: %w", err)
		}
		r.Timestamp = time.Unix(0, ts)
		r.Success = success != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats returns the aggregate tallies for gameID.
func (s *SQLiteStore) Stats(ctx context.Context, gameID string) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, attempts, successes FROM action_stats WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query action stats: %w", err)
	}
	defer rows.Close()

	stats := make(Stats)
	for rows.Next() {
		var action string
		var t Tally
		if err := rows.Scan(&action, &t.Attempts, &t.Successes); err != nil {
			return nil, fmt.Errorf("failed to scan action stats: %w", err)
		}
		stats[action] = t
	}
	return stats, rows.Err()
}

// Summarize returns the text digest of the stats for gameID.
func (s *SQLiteStore) Summarize(ctx context.Context, gameID string) (string, error) {
	stats, err := s.Stats(ctx, gameID)
	if err != nil {
		return "", err
	}
	return stats.Digest(), nil
}

// Clear removes all records and tallies for gameID.
func (s *SQLiteStore) Clear(ctx context.Context, gameID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM action_records WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("failed to clear action records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM action_stats WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("failed to clear action stats: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
