package engine

import (
	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

// GoalComparison compares a person's intake with dailyCalorieGoal × logged days.
// Positive Delta is a surplus.
type GoalComparison struct {
	Person                  string  `json:"person"`
	HasData                 bool    `json:"has_data"`
	Days                    int     `json:"days"`
	DailyGoal               int     `json:"daily_goal"`
	Expected                int     `json:"expected"`
	Actual                  int     `json:"actual"`
	Delta                   int     `json:"delta"`
	EstimatedWeightChangeLb float64 `json:"estimated_weight_change_lb"`
	Progress                float64 `json:"progress"`
}

// TDEEComparison is the same view against maintenance calories.
type TDEEComparison struct {
	Person                  string  `json:"person"`
	HasData                 bool    `json:"has_data"`
	Days                    int     `json:"days"`
	TDEE                    int     `json:"tdee"`
	Expected                int     `json:"expected"`
	Actual                  int     `json:"actual"`
	Delta                   int     `json:"delta"`
	AveragePerDay           float64 `json:"average_per_day"`
	AvgDelta                float64 `json:"avg_delta"`
	EstimatedWeightChangeLb float64 `json:"estimated_weight_change_lb"`
}

type PersonComparison struct {
	Person string         `json:"person"`
	Goal   GoalComparison `json:"goal"`
	TDEE   TDEEComparison `json:"tdee"`
}

type intake struct {
	actual int
	days   int
}

func (e *Engine) intakeOf(entries []models.MealEntry, person string) intake {
	days := make(map[Day]struct{})
	var in intake
	for _, en := range entries {
		if en.Person != person {
			continue
		}
		d, ok := e.usable(en)
		if !ok {
			continue
		}
		days[d] = struct{}{}
		in.actual += en.Calories
	}
	in.days = len(days)
	return in
}

// CompareGoal reports HasData=false when the person logged on zero days.
func (e *Engine) CompareGoal(entries []models.MealEntry, person string) GoalComparison {
	goal := e.profiles.Lookup(person).DailyCalorieGoal
	out := GoalComparison{Person: person, DailyGoal: goal}

	in := e.intakeOf(entries, person)
	if in.days == 0 {
		return out
	}
	out.HasData = true
	out.Days = in.days
	out.Expected = goal * in.days
	out.Actual = in.actual
	out.Delta = out.Actual - out.Expected
	out.EstimatedWeightChangeLb = float64(out.Delta) / CaloriesPerPound
	out.Progress = progress(out.Actual, out.Expected)
	return out
}

func (e *Engine) CompareTDEE(entries []models.MealEntry, person string) TDEEComparison {
	tdee := e.profiles.Lookup(person).EstimatedTDEE
	out := TDEEComparison{Person: person, TDEE: tdee}

	in := e.intakeOf(entries, person)
	if in.days == 0 {
		return out
	}
	out.HasData = true
	out.Days = in.days
	out.Expected = tdee * in.days
	out.Actual = in.actual
	out.Delta = out.Actual - out.Expected
	out.AveragePerDay = float64(out.Actual) / float64(in.days)
	out.AvgDelta = out.AveragePerDay - float64(tdee)
	out.EstimatedWeightChangeLb = float64(out.Delta) / CaloriesPerPound
	return out
}

// CompareAll runs both comparisons for every known person, in name order.
func (e *Engine) CompareAll(entries []models.MealEntry) []PersonComparison {
	persons := e.KnownPersons(entries)
	out := make([]PersonComparison, 0, len(persons))
	for _, p := range persons {
		out = append(out, PersonComparison{
			Person: p,
			Goal:   e.CompareGoal(entries, p),
			TDEE:   e.CompareTDEE(entries, p),
		})
	}
	return out
}

// progress is actual/expected capped at 1, and 0 when nothing was expected.
func progress(actual, expected int) float64 {
	if expected <= 0 {
		return 0
	}
	p := float64(actual) / float64(expected)
	if p > 1 {
		return 1
	}
	return p
}
