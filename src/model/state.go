package model

import (
	"database/sql"
	"time"
)

// Session-state key-value store. This backs the persistence port the UI
// layer uses to survive reloads of in-progress portfolio data; the
// classification pipeline never reads it.

// LoadState returns the stored value for a key, with found=false when no
// value exists.
func LoadState(db *sql.DB, userID int64, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT state_value FROM session_state WHERE user_id = ? AND state_key = ?`, userID, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// SaveState upserts a key's value.
func SaveState(db *sql.DB, userID int64, key, value string) error {
	_, err := db.Exec(`
	INSERT INTO session_state (user_id, state_key, state_value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, state_key) DO UPDATE SET state_value = excluded.state_value, updated_at = excluded.updated_at`,
		userID, key, value, time.Now())
	return err
}

// ClearState removes a key.
func ClearState(db *sql.DB, userID int64, key string) error {
	_, err := db.Exec(`DELETE FROM session_state WHERE user_id = ? AND state_key = ?`, userID, key)
	return err
}
