package types

import (
	"fmt"
	"strings"
	"time"
)

// FoodItem is a catalog entry carrying nutrition facts.
// All nutrient values are expressed per the stated serving
// (ServingSize/ServingUnit), never pre-scaled to a logged quantity.
// When Barcode is present it is the canonical identity of the item;
// otherwise the name (compared case-insensitively) identifies it.
type FoodItem struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Brand       string  `json:"brand,omitempty" bson:"brand"`
	Barcode     string  `json:"barcode,omitempty" bson:"barcode"`
	ServingSize float64 `json:"serving_size" bson:"serving_size"`
	ServingUnit string  `json:"serving_unit" bson:"serving_unit"`

	Calories      float64 `json:"calories" bson:"calories"`
	Protein       float64 `json:"protein" bson:"protein"`
	Carbohydrates float64 `json:"carbohydrates" bson:"carbohydrates"`
	Fat           float64 `json:"fat" bson:"fat"`
	Fiber         float64 `json:"fiber" bson:"fiber"`
	Sugar         float64 `json:"sugar" bson:"sugar"`
	Sodium        float64 `json:"sodium" bson:"sodium"`
	SaturatedFat  float64 `json:"saturated_fat" bson:"saturated_fat"`
	Cholesterol   float64 `json:"cholesterol" bson:"cholesterol"`
	Potassium     float64 `json:"potassium" bson:"potassium"`
	VitaminA      float64 `json:"vitamin_a" bson:"vitamin_a"`
	VitaminC      float64 `json:"vitamin_c" bson:"vitamin_c"`
	Calcium       float64 `json:"calcium" bson:"calcium"`
	Iron          float64 `json:"iron" bson:"iron"`

	ImageURL  string    `json:"image_url,omitempty" bson:"image_url"`
	IsCustom  bool      `json:"is_custom" bson:"is_custom"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IdentityKey is the value used to deduplicate food items across
// local and remote sources: the barcode when present,
// otherwise the lower-cased name
func (f *FoodItem) IdentityKey() string {
	if f.Barcode != "" {
		return f.Barcode
	}

	return strings.ToLower(f.Name)
}

// MealCategory is the slot of the day a meal was logged against
type MealCategory string

// The four meal categories
const (
	CategoryBreakfast MealCategory = "BREAKFAST"
	CategoryLunch     MealCategory = "LUNCH"
	CategoryDinner    MealCategory = "DINNER"
	CategorySnack     MealCategory = "SNACK"
)

// ParseMealCategory parses a meal category from its wire value,
// accepting any casing
func ParseMealCategory(raw string) (MealCategory, error) {
	switch MealCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryBreakfast:
		return CategoryBreakfast, nil
	case CategoryLunch:
		return CategoryLunch, nil
	case CategoryDinner:
		return CategoryDinner, nil
	case CategorySnack:
		return CategorySnack, nil
	}

	return "", fmt.Errorf("unknown meal category '%s'", raw)
}

// DisplayName gets the human-readable name of the category
// as it appears in exported reports
func (c MealCategory) DisplayName() string {
	switch c {
	case CategoryBreakfast:
		return "Breakfast"
	case CategoryLunch:
		return "Lunch"
	case CategoryDinner:
		return "Dinner"
	case CategorySnack:
		return "Snack"
	}

	return string(c)
}

// Meal is a logged consumption event.
// Its nutrient fields are absolute totals already scaled
// to the logged quantity, independent of the referenced
// FoodItem's per-serving values.
type Meal struct {
	ID         string       `json:"id" bson:"id"`
	FoodItemID string       `json:"food_item_id" bson:"food_item_id"`
	FoodName   string       `json:"food_name" bson:"food_name"`
	Category   MealCategory `json:"category" bson:"category"`
	Quantity   float64      `json:"quantity" bson:"quantity"`
	Unit       string       `json:"unit" bson:"unit"`

	Calories      float64 `json:"calories" bson:"calories"`
	Protein       float64 `json:"protein" bson:"protein"`
	Carbohydrates float64 `json:"carbohydrates" bson:"carbohydrates"`
	Fat           float64 `json:"fat" bson:"fat"`
	Fiber         float64 `json:"fiber" bson:"fiber"`
	Sugar         float64 `json:"sugar" bson:"sugar"`
	Sodium        float64 `json:"sodium" bson:"sodium"`

	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Notes     string    `json:"notes,omitempty" bson:"notes"`
}

// NutritionSummary is the aggregate of the meals over a date range.
// It is always derived on demand and never persisted;
// all totals are zero when no meals exist in the range.
type NutritionSummary struct {
	TotalCalories      float64 `json:"total_calories"`
	TotalProtein       float64 `json:"total_protein"`
	TotalCarbohydrates float64 `json:"total_carbohydrates"`
	TotalFat           float64 `json:"total_fat"`
	TotalFiber         float64 `json:"total_fiber"`
	TotalSugar         float64 `json:"total_sugar"`
	TotalSodium        float64 `json:"total_sodium"`
	MealCount          int     `json:"meal_count"`
}
