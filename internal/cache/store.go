package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"surfcast/internal/msw"
)

// Store persists cache entries across restarts. The in-memory map stays
// authoritative; the store is write-through on fetch and read once at
// startup.
type Store interface {
	Put(key Key, fc *msw.Forecast, fetchedAt time.Time) error
	Load() ([]StoredEntry, error)
	Close() error
}

// StoredEntry is one persisted cache entry.
type StoredEntry struct {
	Key       Key
	Forecast  *msw.Forecast
	FetchedAt time.Time
}

// SQLiteStore keeps forecast payloads in a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and if needed creates) the cache database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// Set pragmas for performance
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	schema := `
		CREATE TABLE IF NOT EXISTS forecast_cache (
			spot_id INTEGER NOT NULL,
			units TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (spot_id, units)
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating forecast_cache table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put upserts one entry, overwriting any previous forecast for the key.
func (s *SQLiteStore) Put(key Key, fc *msw.Forecast, fetchedAt time.Time) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encoding forecast payload: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO forecast_cache (spot_id, units, fetched_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (spot_id, units) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, key.SpotID, string(key.Units), fetchedAt.Unix(), string(payload))
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Load reads every persisted entry. Rows that no longer parse are skipped
// rather than failing the whole load.
func (s *SQLiteStore) Load() ([]StoredEntry, error) {
	rows, err := s.db.Query(`SELECT spot_id, units, fetched_at, payload FROM forecast_cache`)
	if err != nil {
		return nil, fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	var entries []StoredEntry
	for rows.Next() {
		var (
			spotID    int
			units     string
			fetchedAt int64
			payload   string
		)
		if err := rows.Scan(&spotID, &units, &fetchedAt, &payload); err != nil {
			continue
		}

		var fc msw.Forecast
		if err := json.Unmarshal([]byte(payload), &fc); err != nil {
			continue
		}

		entries = append(entries, StoredEntry{
			Key:       Key{SpotID: spotID, Units: msw.UnitSystem(units)},
			Forecast:  &fc,
			FetchedAt: time.Unix(fetchedAt, 0).UTC(),
		})
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
