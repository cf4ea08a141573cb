// Package engine turns a snapshot of meal rows into the read-only views the
// tracker shows: today's feed, leaderboards, goal and TDEE comparisons,
// roast tiers and chart series.
//
// Nothing here reads a clock or talks to storage. Callers pass the rows,
// and "now" where today matters.
package engine

import (
	"sort"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

// CaloriesPerPound is the energy surplus treated as one pound of body mass.
const CaloriesPerPound = 3500.0

// MaxSeriesDays is the default longest chart window, in days.
const MaxSeriesDays = 366

type LeaderboardOrder int

const (
	MostCaloriesFirst LeaderboardOrder = iota
	FewestCaloriesFirst
)

type Engine struct {
	loc           *time.Location
	profiles      Profiles
	order         LeaderboardOrder
	maxSeriesDays int
}

type Option func(*Engine)

func WithLeaderboardOrder(o LeaderboardOrder) Option {
	return func(e *Engine) { e.order = o }
}

// WithMaxSeriesDays bounds every chart series to its latest n days.
// Non-positive values keep MaxSeriesDays.
func WithMaxSeriesDays(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSeriesDays = n
		}
	}
}

func New(loc *time.Location, profiles Profiles, opts ...Option) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{loc: loc, profiles: profiles, maxSeriesDays: MaxSeriesDays}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) Profiles() Profiles { return e.profiles }

func (e *Engine) MaxSeriesDays() int { return e.maxSeriesDays }

// DayOf is the single day-bucketing rule. Entries without a usable
// timestamp report false and drop out of every day-based view.
func (e *Engine) DayOf(entry models.MealEntry) (Day, bool) {
	if entry.LoggedAt.IsZero() {
		return Day{}, false
	}
	return DayFromTime(entry.LoggedAt, e.loc), true
}

func (e *Engine) Today(now time.Time) Day {
	return DayFromTime(now, e.loc)
}

// KnownPersons is every configured person plus anyone who appears in entries.
func (e *Engine) KnownPersons(entries []models.MealEntry) []string {
	seen := make(map[string]struct{})
	for _, name := range e.profiles.Persons() {
		seen[name] = struct{}{}
	}
	for _, en := range entries {
		if en.Person != "" {
			seen[en.Person] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// usable filters out rows the engine must ignore.
func (e *Engine) usable(entry models.MealEntry) (Day, bool) {
	if entry.Calories < 0 {
		return Day{}, false
	}
	return e.DayOf(entry)
}
