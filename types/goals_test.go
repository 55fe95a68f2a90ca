package types

import "testing"

func TestDefaultNutritionGoals(t *testing.T) {
	goals := DefaultNutritionGoals()

	if goals.DailyCalories != 2000 {
		t.Errorf("expected a 2000 kcal default, got %v", goals.DailyCalories)
	}
	if goals.DailyProtein != 50 || goals.DailyCarbohydrates != 250 || goals.DailyFat != 65 {
		t.Errorf("unexpected macro defaults: %+v", goals)
	}
	if goals.DailyFiber != 25 || goals.DailySugar != 50 || goals.DailySodium != 2300 {
		t.Errorf("unexpected fiber/sugar/sodium defaults: %+v", goals)
	}
}
