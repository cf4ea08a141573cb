package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormStore(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "meals.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s := NewGorm(db)
	require.NoError(t, s.Migrate())
	return s
}

func TestGorm_InsertAndList(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	at := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

	first, err := s.InsertEntry(ctx, models.NewMealEntry{Person: "Ronit", Meal: "Ramen", Calories: 900, LoggedAt: at})
	require.NoError(t, err)
	second, err := s.InsertEntry(ctx, models.NewMealEntry{Person: "Brother", Meal: "Steak", Calories: 1100, Description: "ribeye", LoggedAt: at.Add(time.Hour)})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, "ribeye", entries[0].Description)
	assert.True(t, entries[1].LoggedAt.Equal(at))
	// entries without comments list an empty slice, not null
	assert.NotNil(t, entries[1].Comments)
	assert.Empty(t, entries[1].Comments)
}

func TestGorm_UpdateCommentsReplacesInOrder(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	at := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	id, err := s.InsertEntry(ctx, models.NewMealEntry{Person: "Ronit", Meal: "Ramen", Calories: 900, LoggedAt: at})
	require.NoError(t, err)

	require.NoError(t, s.UpdateComments(ctx, id, []models.Comment{{At: at, Text: "one"}}))
	require.NoError(t, s.UpdateComments(ctx, id, []models.Comment{
		{At: at, Text: "one"},
		{At: at.Add(time.Minute), Text: "two"},
		{At: at.Add(2 * time.Minute), Text: "three"},
	}))

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	texts := []string{}
	for _, c := range entries[0].Comments {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, texts)
}

func TestGorm_UpdateUnknownID(t *testing.T) {
	s := newGormStore(t)
	err := s.UpdateComments(context.Background(), "missing", []models.Comment{{Text: "x"}})
	assert.ErrorIs(t, err, ErrNotFound)
}
