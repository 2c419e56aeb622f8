package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Finished workouts
		`CREATE TABLE IF NOT EXISTS workout_sessions (
			id TEXT PRIMARY KEY,
			date DATETIME NOT NULL,
			exercise TEXT NOT NULL,
			reps INTEGER NOT NULL CHECK(reps >= 0),
			form_score INTEGER NOT NULL CHECK(form_score BETWEEN 0 AND 100),
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Per-exercise rep targets; absent rows mean the default goal
		`CREATE TABLE IF NOT EXISTS rep_goals (
			exercise TEXT PRIMARY KEY,
			target_reps INTEGER NOT NULL CHECK(target_reps > 0),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workout_sessions_date ON workout_sessions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_workout_sessions_exercise ON workout_sessions(exercise)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
