package models

import (
	"fmt"
	"time"
)

// SearchRecord is a structured filter combination that produced a remote movie query.
type SearchRecord struct {
	id          string
	Criteria    Criteria
	ResultCount int
	createdAt   time.Time
}

// NewSearchRecord records criteria and its result size, stamped now.
func NewSearchRecord(criteria Criteria, resultCount int) *SearchRecord {
	return &SearchRecord{Criteria: criteria.Structured(), ResultCount: resultCount, createdAt: time.Now()}
}

func (s *SearchRecord) ID() string { return s.id }
func (s *SearchRecord) SetID(id string) { s.id = id }
func (s *SearchRecord) CreatedAt() time.Time { return s.createdAt }
func (s *SearchRecord) SetCreatedAt(t time.Time) { s.createdAt = t }

// Validate rejects negative counts and unknown sort keys.
func (s *SearchRecord) Validate() error {
	if s.ResultCount < 0 {
		return fmt.Errorf("result count must not be negative")
	}
	if s.Criteria.SortBy != "" && !IsSortKey(s.Criteria.SortBy) {
		return fmt.Errorf("unknown sort key %q", s.Criteria.SortBy)
	}
	return nil
}
