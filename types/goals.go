package types

// NutritionGoals holds the daily nutrient targets.
// A single record exists per deployment; reading unset goals
// yields the defaults.
type NutritionGoals struct {
	DailyCalories      float64 `json:"daily_calories" bson:"daily_calories"`
	DailyProtein       float64 `json:"daily_protein" bson:"daily_protein"`
	DailyCarbohydrates float64 `json:"daily_carbohydrates" bson:"daily_carbohydrates"`
	DailyFat           float64 `json:"daily_fat" bson:"daily_fat"`
	DailyFiber         float64 `json:"daily_fiber" bson:"daily_fiber"`
	DailySugar         float64 `json:"daily_sugar" bson:"daily_sugar"`
	DailySodium        float64 `json:"daily_sodium" bson:"daily_sodium"`
}

// DefaultNutritionGoals gets the targets used before the user
// saves their own
func DefaultNutritionGoals() NutritionGoals {
	return NutritionGoals{
		DailyCalories:      2000,
		DailyProtein:       50,
		DailyCarbohydrates: 250,
		DailyFat:           65,
		DailyFiber:         25,
		DailySugar:         50,
		DailySodium:        2300,
	}
}
