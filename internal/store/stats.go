package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string `json:"db_path"`
	DBSizeBytes  int64  `json:"db_size_bytes"`
	Goals        int    `json:"goals"`
	ActiveGoals  int    `json:"active_goals"`
	Episodes     int    `json:"episodes"`
	OpenEpisodes int    `json:"open_episodes"`
	Turns        int    `json:"turns"`
	HasProfile   bool   `json:"has_profile"`
}

// Stats returns row counts and file size for the store.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	now := fmtTime(s.now())

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals`).Scan(&st.Goals)
	s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goals WHERE event_datetime IS NULL OR event_datetime > ?`, now).Scan(&st.ActiveGoals)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&st.Episodes)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes WHERE end_date IS NULL`).Scan(&st.OpenEpisodes)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM convo_turns`).Scan(&st.Turns)

	var profiles int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM athlete_profile`).Scan(&profiles)
	st.HasProfile = profiles > 0

	return st, nil
}
