package engine

import (
	"sort"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

// SelectByDay returns the entries logged on day, newest first, ties by ID.
func (e *Engine) SelectByDay(entries []models.MealEntry, day Day) []models.MealEntry {
	return e.SelectRange(entries, day, day)
}

// SelectRange keeps entries whose day falls in [from, to].
func (e *Engine) SelectRange(entries []models.MealEntry, from, to Day) []models.MealEntry {
	out := make([]models.MealEntry, 0)
	for _, en := range entries {
		d, ok := e.usable(en)
		if !ok || d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, en.Clone())
	}
	sortNewestFirst(out)
	return out
}

// Feed is every usable entry, newest first.
func (e *Engine) Feed(entries []models.MealEntry) []models.MealEntry {
	out := make([]models.MealEntry, 0, len(entries))
	for _, en := range entries {
		if _, ok := e.usable(en); ok {
			out = append(out, en.Clone())
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(entries []models.MealEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.LoggedAt.Equal(b.LoggedAt) {
			return a.LoggedAt.After(b.LoggedAt)
		}
		return a.ID < b.ID
	})
}
