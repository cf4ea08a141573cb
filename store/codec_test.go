package store

import (
	"testing"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestCodec_RoundTripKeepsPersonCaloriesAndDay(t *testing.T) {
	loc := newYork(t)
	codec := Codec{Loc: loc}
	eng := engine.New(loc, engine.DefaultProfiles())

	entries := []models.MealEntry{
		{ID: "1", Person: "Ronit", Meal: "Wings", Calories: 1450, LoggedAt: time.Date(2024, 6, 1, 3, 59, 59, 900, time.UTC)},
		{ID: "2", Person: "Brother", Meal: "Salad, no dressing", Calories: 0, Description: "said \"healthy\"", LoggedAt: time.Date(2024, 6, 1, 23, 30, 0, 0, loc)},
		{ID: "3", Person: "Ronit", Meal: "Pizza", Calories: 2999, LoggedAt: time.Date(2024, 12, 31, 23, 59, 0, 0, loc),
			Comments: []models.Comment{{At: time.Date(2025, 1, 1, 0, 5, 0, 0, loc), Text: "new year\nsame you"}}},
	}

	for _, want := range entries {
		got, err := codec.DecodeRow(codec.EncodeRow(want))
		require.NoError(t, err)

		wantDay, _ := eng.DayOf(want)
		gotDay, _ := eng.DayOf(got)
		assert.Equal(t, want.Person, got.Person)
		assert.Equal(t, want.Calories, got.Calories)
		assert.Equal(t, wantDay, gotDay)
		assert.Equal(t, want.Meal, got.Meal)
		assert.Equal(t, want.Description, got.Description)
	}
}

func TestCodec_CommentsBlob(t *testing.T) {
	loc := newYork(t)
	codec := Codec{Loc: loc}
	at := time.Date(2024, 6, 2, 20, 15, 0, 0, loc)

	blob := codec.JoinComments([]models.Comment{
		{At: at, Text: "bro"},
		{At: at.Add(10 * time.Minute), Text: "why - just why"},
	})
	assert.Equal(t, "2024-06-02 20:15 - bro\n2024-06-02 20:25 - why - just why", blob)

	back := codec.SplitComments(blob, at)
	require.Len(t, back, 2)
	assert.Equal(t, "why - just why", back[1].Text)
	assert.True(t, back[1].At.Equal(at.Add(10*time.Minute)))
	assert.Equal(t, 1, back[1].Position)
}

func TestCodec_LegacyCommentLines(t *testing.T) {
	loc := newYork(t)
	codec := Codec{Loc: loc}
	entryAt := time.Date(2024, 6, 2, 12, 0, 0, 0, loc)

	got := codec.SplitComments("\n21:05 - absolutely not\nno prefix here", entryAt)

	require.Len(t, got, 2)
	assert.Equal(t, "absolutely not", got[0].Text)
	assert.True(t, got[0].At.Equal(time.Date(2024, 6, 2, 21, 5, 0, 0, loc)))
	assert.Equal(t, "no prefix here", got[1].Text)
	assert.True(t, got[1].At.Equal(entryAt))
}

func TestCodec_DecodeFailures(t *testing.T) {
	codec := Codec{Loc: time.UTC}
	tests := []struct {
		name string
		row  []string
	}{
		{"bad timestamp", []string{"1", "yesterday", "Ronit", "Tacos", "800", "", ""}},
		{"bad calories", []string{"1", "2024-06-01 12:00:00", "Ronit", "Tacos", "lots", "", ""}},
		{"negative calories", []string{"1", "2024-06-01 12:00:00", "Ronit", "Tacos", "-5", "", ""}},
		{"missing id", []string{"", "2024-06-01 12:00:00", "Ronit", "Tacos", "800", "", ""}},
		{"short row", []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.DecodeRow(tt.row)
			assert.ErrorIs(t, err, ErrParseFailure)
		})
	}
}

func TestCodec_SpreadsheetNumbers(t *testing.T) {
	codec := Codec{Loc: time.UTC}
	got, err := codec.DecodeRow([]string{"1", "2024-06-01 12:00:00", "Ronit", "Tacos", "650.0"})
	require.NoError(t, err)
	assert.Equal(t, 650, got.Calories)
	assert.NotNil(t, got.Comments)
	assert.Empty(t, got.Comments)
}
