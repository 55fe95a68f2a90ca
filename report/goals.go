package report

import (
	"github.com/librediet/librediet-api/types"
)

// GoalProgress is the consumed-versus-target state of one nutrient
type GoalProgress struct {
	Nutrient string  `json:"nutrient"`
	Consumed float64 `json:"consumed"`
	Target   float64 `json:"target"`
	Percent  float64 `json:"percent"`
}

// Progress measures a nutrition summary against the daily goals,
// one entry per tracked nutrient. Percent is the consumed fraction of
// the target capped at 1; a non-positive target reports 0.
func Progress(goals types.NutritionGoals, summary types.NutritionSummary) []GoalProgress {
	entries := []struct {
		nutrient string
		consumed float64
		target   float64
	}{
		{"calories", summary.TotalCalories, goals.DailyCalories},
		{"protein", summary.TotalProtein, goals.DailyProtein},
		{"carbohydrates", summary.TotalCarbohydrates, goals.DailyCarbohydrates},
		{"fat", summary.TotalFat, goals.DailyFat},
		{"fiber", summary.TotalFiber, goals.DailyFiber},
		{"sugar", summary.TotalSugar, goals.DailySugar},
		{"sodium", summary.TotalSodium, goals.DailySodium},
	}

	progress := make([]GoalProgress, 0, len(entries))
	for _, entry := range entries {
		progress = append(progress, GoalProgress{
			Nutrient: entry.nutrient,
			Consumed: entry.consumed,
			Target:   entry.target,
			Percent:  percentOfTarget(entry.consumed, entry.target),
		})
	}

	return progress
}

func percentOfTarget(consumed float64, target float64) float64 {
	if target <= 0 {
		return 0
	}

	percent := consumed / target
	if percent > 1 {
		return 1
	}

	return percent
}
