package db

import (
	"context"
	"time"

	"github.com/librediet/librediet-api/types"
)

// Provider represents a database provider implementation
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	FoodItemProvider
	MealProvider
	MealTemplateProvider
	NutritionGoalsProvider
}

// FoodItemProvider provides CRUD operations for types.FoodItem structs.
// UpsertFoodItem is an insert-or-replace keyed on the item's identity
// (barcode when present, otherwise the case-insensitive name);
// concurrent writers for the same identity resolve last-write-wins.
type FoodItemProvider interface {
	GetFoodItem(ctx context.Context, id string) (*types.FoodItem, error)
	GetFoodItemByBarcode(ctx context.Context, barcode string) (*types.FoodItem, error)
	SearchFoodItems(ctx context.Context, query string, limit int) ([]types.FoodItem, error)
	GetAllFoodItems(ctx context.Context) ([]types.FoodItem, error)
	UpsertFoodItem(ctx context.Context, item types.FoodItem) error
	UpdateFoodItem(ctx context.Context, id string, update map[string]interface{}) (*types.FoodItem, error)
	DeleteCustomFoodItems(ctx context.Context) (int64, error)
}

// MealProvider provides CRUD and range operations for types.Meal structs.
// All date ranges are half-open: start <= timestamp < end.
type MealProvider interface {
	GetMeal(ctx context.Context, id string) (*types.Meal, error)
	GetMealsInRange(ctx context.Context, start time.Time, end time.Time) ([]types.Meal, error)
	CreateMeal(ctx context.Context, meal types.Meal) error
	UpdateMeal(ctx context.Context, id string, update map[string]interface{}) (*types.Meal, error)
	DeleteMeal(ctx context.Context, id string) error
	DeleteMealsInRange(ctx context.Context, start time.Time, end time.Time) (int64, error)
}

// MealTemplateProvider provides CRUD operations for types.MealTemplate
// structs. Listing and search return templates most used first;
// RecordMealTemplateUse bumps the usage counter and last-used time.
type MealTemplateProvider interface {
	GetMealTemplate(ctx context.Context, id string) (*types.MealTemplate, error)
	GetAllMealTemplates(ctx context.Context) ([]types.MealTemplate, error)
	SearchMealTemplates(ctx context.Context, query string, limit int) ([]types.MealTemplate, error)
	CreateMealTemplate(ctx context.Context, template types.MealTemplate) error
	UpdateMealTemplate(ctx context.Context, id string, update map[string]interface{}) (*types.MealTemplate, error)
	RecordMealTemplateUse(ctx context.Context, id string) (*types.MealTemplate, error)
	DeleteMealTemplate(ctx context.Context, id string) error
}

// NutritionGoalsProvider stores the single daily nutrition goals record.
// Reading goals that were never saved returns the defaults, not an error.
type NutritionGoalsProvider interface {
	GetNutritionGoals(ctx context.Context) (types.NutritionGoals, error)
	SaveNutritionGoals(ctx context.Context, goals types.NutritionGoals) error
}
