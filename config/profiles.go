package config

import (
	"fmt"
	"os"

	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"gopkg.in/yaml.v3"
)

// LoadProfiles reads per-person targets. An empty path gives Ronit and
// Brother on default targets.
//
//	default:
//	  daily_calorie_goal: 2000
//	  estimated_tdee: 2200
//	people:
//	  Ronit:
//	    daily_calorie_goal: 2200
func LoadProfiles(path string) (engine.Profiles, error) {
	profiles := engine.DefaultProfiles()
	if path == "" {
		profiles.People = map[string]engine.Profile{
			"Ronit":   profiles.Default,
			"Brother": profiles.Default,
		}
		return profiles, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return profiles, fmt.Errorf("reading profiles: %w", err)
	}
	return ParseProfiles(raw)
}

func ParseProfiles(raw []byte) (engine.Profiles, error) {
	profiles := engine.DefaultProfiles()
	var file engine.Profiles
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return profiles, fmt.Errorf("parsing profiles: %w", err)
	}
	if file.Default.DailyCalorieGoal > 0 {
		profiles.Default.DailyCalorieGoal = file.Default.DailyCalorieGoal
	}
	if file.Default.EstimatedTDEE > 0 {
		profiles.Default.EstimatedTDEE = file.Default.EstimatedTDEE
	}
	profiles.People = file.People
	for name, p := range profiles.People {
		if p.DailyCalorieGoal < 0 || p.EstimatedTDEE < 0 {
			return profiles, fmt.Errorf("profile %q: targets must not be negative", name)
		}
	}
	return profiles, nil
}
