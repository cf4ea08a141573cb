package engine

import (
	"sort"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

type Standing struct {
	Rank          int    `json:"rank"`
	Person        string `json:"person"`
	TotalCalories int    `json:"total_calories"`
	MealCount     int    `json:"meal_count"`
}

// Leaderboard ranks the people who logged on day. Only people with at
// least one entry that day appear. By default the highest daily total ranks
// first; WithLeaderboardOrder(FewestCaloriesFirst) reverses that. Equal
// totals rank by person name ascending in both orders.
func (e *Engine) Leaderboard(entries []models.MealEntry, day Day) []Standing {
	byPerson := make(map[string]*Standing)
	for _, en := range e.SelectByDay(entries, day) {
		s := byPerson[en.Person]
		if s == nil {
			s = &Standing{Person: en.Person}
			byPerson[en.Person] = s
		}
		s.TotalCalories += en.Calories
		s.MealCount++
	}

	out := make([]Standing, 0, len(byPerson))
	for _, s := range byPerson {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalCalories != b.TotalCalories {
			if e.order == FewestCaloriesFirst {
				return a.TotalCalories < b.TotalCalories
			}
			return a.TotalCalories > b.TotalCalories
		}
		return a.Person < b.Person
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
