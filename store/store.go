// Package store holds the meal table collaborators. Every backend speaks the
// same three operations; none of them computes views.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("meal entry not found")
	ErrParseFailure = errors.New("row could not be parsed")
)

type Store interface {
	ListEntries(ctx context.Context) ([]models.MealEntry, error)
	InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error)
	// UpdateComments overwrites the whole comment field of one entry.
	UpdateComments(ctx context.Context, id string, comments []models.Comment) error
}

// RowError describes one skipped row.
type RowError struct {
	Row int
	ID  string
	Err error
}

func (e RowError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("row %d (id %s): %v", e.Row, e.ID, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// SkipReport collects rows that a backend dropped while listing.
type SkipReport struct {
	Skipped []RowError
}

func (r *SkipReport) add(row int, id string, err error) {
	r.Skipped = append(r.Skipped, RowError{Row: row, ID: id, Err: err})
}

func (r SkipReport) Count() int { return len(r.Skipped) }

// Reporter is implemented by backends that can drop malformed rows.
type Reporter interface {
	LastSkipReport() SkipReport
}

func logSkipped(log *zap.Logger, backend string, rep SkipReport) {
	for _, s := range rep.Skipped {
		log.Warn("skipping unparseable row",
			zap.String("backend", backend),
			zap.Int("row", s.Row),
			zap.String("id", s.ID),
			zap.Error(s.Err),
		)
	}
}
