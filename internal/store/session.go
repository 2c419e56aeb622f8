package store

import (
	"database/sql"
	"errors"

	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/session"
)

// SessionRepository stores finished workouts.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the workout session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a finished workout.
func (r *SessionRepository) Create(ws *session.WorkoutSession) error {
	_, err := r.db.Exec(
		`INSERT INTO workout_sessions (id, date, exercise, reps, form_score, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ws.ID, ws.Date.UTC(), string(ws.Exercise), ws.Reps, ws.FormScore, ws.DurationSeconds,
	)
	return err
}

// Record implements session.Recorder.
func (r *SessionRepository) Record(ws session.WorkoutSession) error {
	return r.Create(&ws)
}

// GetByID retrieves a workout by its ID.
func (r *SessionRepository) GetByID(id string) (*session.WorkoutSession, error) {
	row := r.db.QueryRow(
		`SELECT id, date, exercise, reps, form_score, duration_seconds
		 FROM workout_sessions WHERE id = ?`,
		id,
	)

	ws, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ws, nil
}

// List returns the most recent workouts first. A non-positive limit
// returns all of them.
func (r *SessionRepository) List(limit int) ([]*session.WorkoutSession, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, date, exercise, reps, form_score, duration_seconds
		 FROM workout_sessions ORDER BY date DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListByExercise returns the workouts of one exercise, most recent first.
func (r *SessionRepository) ListByExercise(ex exercise.Exercise, limit int) ([]*session.WorkoutSession, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, date, exercise, reps, form_score, duration_seconds
		 FROM workout_sessions WHERE exercise = ? ORDER BY date DESC LIMIT ?`,
		string(ex), limit,
	)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// Delete removes a workout by its ID.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM workout_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*session.WorkoutSession, error) {
	ws := &session.WorkoutSession{}
	var ex string
	if err := row.Scan(&ws.ID, &ws.Date, &ex, &ws.Reps, &ws.FormScore, &ws.DurationSeconds); err != nil {
		return nil, err
	}
	ws.Exercise = exercise.Exercise(ex)
	return ws, nil
}

func collectSessions(rows *sql.Rows) ([]*session.WorkoutSession, error) {
	defer rows.Close()

	var out []*session.WorkoutSession
	for rows.Next() {
		ws, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
