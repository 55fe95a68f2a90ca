package report

import (
	"context"
	"time"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/types"
)

// Summarize folds a meal list into its nutrition summary.
// Each nutrient column is summed independently; an empty list yields
// the zero-valued summary. The meal nutrient fields are already
// absolute totals for each entry, so no per-serving scaling happens
// here.
func Summarize(meals []types.Meal) types.NutritionSummary {
	summary := types.NutritionSummary{}
	for _, meal := range meals {
		summary.TotalCalories += meal.Calories
		summary.TotalProtein += meal.Protein
		summary.TotalCarbohydrates += meal.Carbohydrates
		summary.TotalFat += meal.Fat
		summary.TotalFiber += meal.Fiber
		summary.TotalSugar += meal.Sugar
		summary.TotalSodium += meal.Sodium
	}
	summary.MealCount = len(meals)

	return summary
}

// Aggregator computes nutrition summaries over date ranges of the
// meal log. It holds no state beyond its store reference and is safe
// to call repeatedly and concurrently.
type Aggregator struct {
	meals db.MealProvider
}

// NewAggregator creates a new aggregator around the given meal store
func NewAggregator(meals db.MealProvider) *Aggregator {
	return &Aggregator{
		meals: meals,
	}
}

// SummaryForRange computes the nutrition summary over the half-open
// range start <= timestamp < end
func (a *Aggregator) SummaryForRange(ctx context.Context, start time.Time, end time.Time) (types.NutritionSummary, error) {
	meals, err := a.meals.GetMealsInRange(ctx, start, end)
	if err != nil {
		return types.NutritionSummary{}, err
	}

	return Summarize(meals), nil
}

// SummaryForDay computes the nutrition summary for the single day
// containing the given time, from its midnight (inclusive) to the
// next midnight (exclusive)
func (a *Aggregator) SummaryForDay(ctx context.Context, day time.Time) (types.NutritionSummary, error) {
	start := types.StartOfDay(day)
	end := start.AddDate(0, 0, 1)
	return a.SummaryForRange(ctx, start, end)
}
