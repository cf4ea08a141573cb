package engine

// Tier is how hard a just-logged meal gets roasted.
type Tier string

const (
	TierNone     Tier = "NONE"
	TierMild     Tier = "MILD"
	TierModerate Tier = "MODERATE"
	TierSevere   Tier = "SEVERE"
)

// Classify compares a single meal with the whole day's goal. That is the
// product rule, not a per-meal budget.
func Classify(calories, goal int) Tier {
	excess := calories - goal
	switch {
	case excess > 500:
		return TierSevere
	case excess > 200:
		return TierModerate
	case excess > 0:
		return TierMild
	default:
		return TierNone
	}
}

func (e *Engine) ClassifyFor(person string, calories int) Tier {
	return Classify(calories, e.profiles.Lookup(person).DailyCalorieGoal)
}

// Severity orders tiers for threshold checks (NONE is 0).
func (t Tier) Severity() int {
	switch t {
	case TierMild:
		return 1
	case TierModerate:
		return 2
	case TierSevere:
		return 3
	default:
		return 0
	}
}

func ParseTier(s string) (Tier, bool) {
	switch t := Tier(s); t {
	case TierNone, TierMild, TierModerate, TierSevere:
		return t, true
	}
	return TierNone, false
}
