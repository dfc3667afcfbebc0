package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	now     func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at the given path,
// creating the parent directory if needed, and bootstraps the schema.
// Calling it against an existing database is a no-op for the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS athlete_profile (
		athlete_id        INTEGER PRIMARY KEY CHECK (athlete_id = 1),
		birth_year        INTEGER,
		gender            TEXT,
		history           TEXT,
		weight_kg         REAL,
		running_years     INTEGER,
		preferred_terrain TEXT,
		weekly_mileage_km REAL,
		ultra_experience  INTEGER,
		updated_at        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS goals (
		id                  TEXT PRIMARY KEY,
		event_name          TEXT NOT NULL,
		distance_km         REAL,
		event_datetime      TEXT,
		context_text        TEXT,
		target_time_seconds INTEGER,
		fitness_level       INTEGER,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_goals_event_dt ON goals(event_datetime);
	CREATE INDEX IF NOT EXISTS idx_goals_name ON goals(event_name);

	CREATE TABLE IF NOT EXISTS episodes (
		id         TEXT PRIMARY KEY,
		topic      TEXT NOT NULL,
		severity   INTEGER,
		narrative  TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_episodes_open ON episodes(end_date);
	CREATE INDEX IF NOT EXISTS idx_episodes_topic_start ON episodes(topic, start_date DESC);

	CREATE TABLE IF NOT EXISTS convo_turns (
		turn_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		speaker   TEXT NOT NULL CHECK (speaker IN ('user', 'agent')),
		text      TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_ts ON convo_turns(timestamp);

	CREATE VIRTUAL TABLE IF NOT EXISTS convo_fts USING fts5(
		text,
		content=convo_turns,
		content_rowid=turn_id
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers keep the conversation index in sync with inserts and
	// retention deletes.
	if _, err := s.db.Exec(`CREATE TRIGGER IF NOT EXISTS convo_ai AFTER INSERT ON convo_turns BEGIN
		INSERT INTO convo_fts(rowid, text) VALUES (new.turn_id, new.text);
	END`); err != nil {
		return fmt.Errorf("create insert trigger: %w", err)
	}
	if _, err := s.db.Exec(`CREATE TRIGGER IF NOT EXISTS convo_ad AFTER DELETE ON convo_turns BEGIN
		INSERT INTO convo_fts(convo_fts, rowid, text) VALUES('delete', old.turn_id, old.text);
	END`); err != nil {
		return fmt.Errorf("create delete trigger: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// timeLayout is RFC3339 with fixed-width nanoseconds. Fixed width keeps
// lexicographic comparison in SQL chronological even for values within the
// same second, which range deletes like retention pruning rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// fmtTime stores timestamps as UTC text in timeLayout.
func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	// RFC3339Nano accepts both fractional and whole-second values.
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func parseTimePtr(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t := parseTime(v.String)
	return &t
}
