package engine

import "sort"

const (
	DefaultDailyCalorieGoal = 2000
	DefaultEstimatedTDEE    = 2200
)

// Profile holds one person's daily targets.
type Profile struct {
	DailyCalorieGoal int `yaml:"daily_calorie_goal" json:"daily_calorie_goal"`
	EstimatedTDEE    int `yaml:"estimated_tdee" json:"estimated_tdee"`
}

// Profiles maps a person to their targets. Default is used for anyone
// without an explicit entry.
type Profiles struct {
	Default Profile            `yaml:"default" json:"default"`
	People  map[string]Profile `yaml:"people" json:"people"`
}

func DefaultProfiles() Profiles {
	return Profiles{
		Default: Profile{DailyCalorieGoal: DefaultDailyCalorieGoal, EstimatedTDEE: DefaultEstimatedTDEE},
	}
}

// Lookup falls back to Default field by field, so a profile may set only a goal.
func (p Profiles) Lookup(person string) Profile {
	prof, ok := p.People[person]
	if !ok {
		return p.Default
	}
	if prof.DailyCalorieGoal <= 0 {
		prof.DailyCalorieGoal = p.Default.DailyCalorieGoal
	}
	if prof.EstimatedTDEE <= 0 {
		prof.EstimatedTDEE = p.Default.EstimatedTDEE
	}
	return prof
}

// Persons lists configured people in name order.
func (p Profiles) Persons() []string {
	out := make([]string, 0, len(p.People))
	for name := range p.People {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p Profiles) Knows(person string) bool {
	_, ok := p.People[person]
	return ok
}
