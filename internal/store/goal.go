package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/formcheck/internal/exercise"
)

// DefaultRepGoal applies to exercises without a stored goal.
const DefaultRepGoal = 10

// RepGoal is a target repetition count for one exercise.
type RepGoal struct {
	Exercise   exercise.Exercise `json:"exercise"`
	TargetReps int               `json:"targetReps"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// GoalRepository stores rep goals.
type GoalRepository struct {
	db *sql.DB
}

// Goals returns the rep goal repository for this store.
func (s *Store) Goals() *GoalRepository {
	return &GoalRepository{db: s.db}
}

// Get returns the goal for ex, or DefaultRepGoal when none is stored.
func (r *GoalRepository) Get(ex exercise.Exercise) (int, error) {
	var target int
	err := r.db.QueryRow(
		`SELECT target_reps FROM rep_goals WHERE exercise = ?`,
		string(ex),
	).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultRepGoal, nil
	}
	if err != nil {
		return 0, err
	}
	return target, nil
}

// Set stores the goal for ex.
func (r *GoalRepository) Set(ex exercise.Exercise, target int) error {
	if target <= 0 {
		return ErrInvalidGoal
	}
	_, err := r.db.Exec(
		`INSERT INTO rep_goals (exercise, target_reps, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(exercise) DO UPDATE SET target_reps = excluded.target_reps, updated_at = excluded.updated_at`,
		string(ex), target, time.Now().UTC(),
	)
	return err
}

// List returns the stored goals ordered by exercise.
func (r *GoalRepository) List() ([]RepGoal, error) {
	rows, err := r.db.Query(
		`SELECT exercise, target_reps, updated_at FROM rep_goals ORDER BY exercise`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []RepGoal
	for rows.Next() {
		var g RepGoal
		var ex string
		if err := rows.Scan(&ex, &g.TargetReps, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Exercise = exercise.Exercise(ex)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

// Delete removes the stored goal so ex falls back to the default.
func (r *GoalRepository) Delete(ex exercise.Exercise) error {
	result, err := r.db.Exec(`DELETE FROM rep_goals WHERE exercise = ?`, string(ex))
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
