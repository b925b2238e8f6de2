package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/timeline"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// parseNullableDate reads a planned/actual date column. Both the date-only
// and the RFC3339 form are accepted; NULL, empty or garbage give nil.
func parseNullableDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := timeline.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableDate returns nil (SQL NULL) for a nil pointer.
func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeline.FormatDate(*t)
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func stringPtrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatPtrValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// encodeIDs stores a reference list as a JSON array; nil becomes "[]".
func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding id list: %w", err)
	}
	return string(b), nil
}

func decodeIDs(raw string) ([]string, error) {
	var ids []string
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding id list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// parseTimestamps fills created/updated from their stored RFC3339 form.
func parseTimestamps(createdStr, updatedStr string, created, updated *time.Time) error {
	var err error
	if *created, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	if *updated, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return fmt.Errorf("parsing updated_at: %w", err)
	}
	return nil
}

func parseStatus(raw string) (domain.Status, error) {
	s, err := domain.ParseStatus(raw)
	if err != nil {
		return "", fmt.Errorf("reading status: %w", err)
	}
	return s, nil
}

// execAffectingOne runs a write that must touch exactly one row.
func execAffectingOne(res sql.Result, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
