package services

import (
	"fmt"

	"github.com/ronit-gandhi/meal-shame-tracker/engine"
)

// RoastMessage is the line shown after a meal is logged.
func RoastMessage(person string, tier engine.Tier) string {
	switch tier {
	case engine.TierSevere:
		return fmt.Sprintf("%s just blew past the whole day's goal in one sitting. Shameful. 🔥🔥🔥", person)
	case engine.TierModerate:
		return fmt.Sprintf("%s, that one meal is well over your daily goal. The group chat will hear about this. 🔥🔥", person)
	case engine.TierMild:
		return fmt.Sprintf("%s nudged over the daily goal with a single meal. Mild shame. 🔥", person)
	default:
		return fmt.Sprintf("%s logged a meal. Nothing to roast... yet.", person)
	}
}
