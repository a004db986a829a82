package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

var _ models.Repository[*models.SearchRecord] = (*SearchHistoryRepository)(nil)

// SearchHistoryRepository implements [models.Repository] for [models.SearchRecord] persistence.
type SearchHistoryRepository struct {
	db *sql.DB
}

// NewSearchHistoryRepository creates a new [SearchHistoryRepository] with the given database connection
func NewSearchHistoryRepository(db *sql.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Create inserts a record with a generated ID
func (r *SearchHistoryRepository) Create(record *models.SearchRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	record.SetID(id)
	if record.CreatedAt().IsZero() {
		record.SetCreatedAt(time.Now())
	}

	query := `
		INSERT INTO search_history (id, genre, year, rating, sort_by, result_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	c := record.Criteria
	if _, err := r.db.Exec(query, id, c.Genre, c.Year, c.Rating, c.SortBy, record.ResultCount, record.CreatedAt()); err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (r *SearchHistoryRepository) Get(id string) (*models.SearchRecord, error) {
	query := `
		SELECT id, genre, year, rating, sort_by, result_count, created_at
		FROM search_history
		WHERE id = ?
	`
	record, err := scanSearchRecord(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("search record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query search record: %w", err)
	}
	return record, nil
}

// Delete removes a record by ID
func (r *SearchHistoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM search_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete search record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("search record not found: %s", id)
	}
	return nil
}

// List returns the newest records first; limit 0 returns all of them
func (r *SearchHistoryRepository) List(limit int) ([]*models.SearchRecord, error) {
	query := `
		SELECT id, genre, year, rating, sort_by, result_count, created_at
		FROM search_history
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var records []*models.SearchRecord
	for rows.Next() {
		record, err := scanSearchRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Clear deletes every record.
func (r *SearchHistoryRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearchRecord(row rowScanner) (*models.SearchRecord, error) {
	var (
		id          string
		c           models.Criteria
		resultCount int
		createdAt   time.Time
	)
	if err := row.Scan(&id, &c.Genre, &c.Year, &c.Rating, &c.SortBy, &resultCount, &createdAt); err != nil {
		return nil, err
	}

	record := models.NewSearchRecord(c, resultCount)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	return record, nil
}
