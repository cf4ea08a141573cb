package engine

import (
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

// Dashboard is every view recomputed from one snapshot.
type Dashboard struct {
	Today       Day                `json:"today"`
	TodayFeed   []models.MealEntry `json:"today_feed"`
	Leaderboard []Standing         `json:"leaderboard"`
	Comparisons []PersonComparison `json:"comparisons"`
	History     Series             `json:"history"`
}

// Dashboard builds all views. historyDays <= 0 charts the whole logged range.
func (e *Engine) Dashboard(entries []models.MealEntry, now time.Time, historyDays int) Dashboard {
	today := e.Today(now)
	d := Dashboard{
		Today:       today,
		TodayFeed:   e.SelectByDay(entries, today),
		Leaderboard: e.Leaderboard(entries, today),
		Comparisons: e.CompareAll(entries),
	}
	if historyDays > 0 {
		d.History = e.DailySeriesRange(entries, today.AddDays(-(historyDays - 1)), today)
	} else {
		d.History = e.DailySeries(entries)
	}
	return d
}
