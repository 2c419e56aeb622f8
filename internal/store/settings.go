package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys.
const (
	SettingVoiceEnabled = "voice_enabled"
	SettingSoundEnabled = "sound_enabled"
	SettingPersona      = "voice_persona"
	SettingExercise     = "exercise"
)

// SettingsRepository stores string settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetOr returns the value for key, or def when it is unset or unreadable.
func (r *SettingsRepository) GetOr(key, def string) string {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	return v
}

// Bool reads key as a boolean, falling back to def.
func (r *SettingsRepository) Bool(key string, def bool) bool {
	b, err := strconv.ParseBool(r.GetOr(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return b
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
