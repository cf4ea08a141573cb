package engine

import (
	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

type Point struct {
	Day      Day `json:"day"`
	Calories int `json:"calories"`
}

// PersonSeries has one point per day of the series range, oldest first.
type PersonSeries struct {
	Person string  `json:"person"`
	Points []Point `json:"points"`
}

type Series struct {
	From    Day            `json:"from"`
	To      Day            `json:"to"`
	Days    []Day          `json:"days"`
	Persons []PersonSeries `json:"persons"`
}

// DailyTotals sums calories per (day, person). Missing pairs are absent here;
// DailySeries fills them.
func (e *Engine) DailyTotals(entries []models.MealEntry) map[Day]map[string]int {
	out := make(map[Day]map[string]int)
	for _, en := range entries {
		d, ok := e.usable(en)
		if !ok {
			continue
		}
		if out[d] == nil {
			out[d] = make(map[string]int)
		}
		out[d][en.Person] += en.Calories
	}
	return out
}

// DailySeries spans the first to the last logged day, trimmed to the latest
// MaxSeriesDays days when the log is longer.
func (e *Engine) DailySeries(entries []models.MealEntry) Series {
	var from, to Day
	found := false
	for _, en := range entries {
		d, ok := e.usable(en)
		if !ok {
			continue
		}
		if !found || d.Before(from) {
			from = d
		}
		if !found || d.After(to) {
			to = d
		}
		found = true
	}
	if !found {
		return Series{Days: []Day{}, Persons: []PersonSeries{}}
	}
	return e.DailySeriesRange(entries, from, to)
}

// DailySeriesRange zero-fills every (day, person) pair in [from, to] so line
// charts never break. A range longer than MaxSeriesDays keeps its latest days.
func (e *Engine) DailySeriesRange(entries []models.MealEntry, from, to Day) Series {
	if to.Before(from) {
		return Series{From: from, To: to, Days: []Day{}, Persons: []PersonSeries{}}
	}
	if from.DaysUntil(to) >= e.maxSeriesDays {
		from = to.AddDays(-(e.maxSeriesDays - 1))
	}
	out := Series{From: from, To: to, Days: []Day{}, Persons: []PersonSeries{}}
	for d := from; !d.After(to); d = d.AddDays(1) {
		out.Days = append(out.Days, d)
	}

	inRange := e.SelectRange(entries, from, to)
	totals := e.DailyTotals(inRange)
	for _, person := range e.KnownPersons(entries) {
		ps := PersonSeries{Person: person, Points: make([]Point, 0, len(out.Days))}
		for _, d := range out.Days {
			ps.Points = append(ps.Points, Point{Day: d, Calories: totals[d][person]})
		}
		out.Persons = append(out.Persons, ps)
	}
	return out
}
