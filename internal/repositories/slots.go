package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SlotRepository implements [Slots] over the slots table.
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new [SlotRepository] with the given database connection
func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Get returns the value stored under key.
func (r *SlotRepository) Get(key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	var value string
	err := r.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value stored under key.
func (r *SlotRepository) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	query := `
		INSERT INTO slots (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	now := time.Now()
	if _, err := r.db.Exec(query, key, value, now, now); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing slot succeeds.
func (r *SlotRepository) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	if _, err := r.db.Exec(`DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (r *SlotRepository) UpdatedAt(key string) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(`SELECT updated_at FROM slots WHERE key = ?`, key).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("slot not found: %s", key)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query slot %s: %w", key, err)
	}
	return updatedAt, nil
}
