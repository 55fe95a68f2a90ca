package types

import "time"

// TemplateItem is a single food entry inside a meal template,
// carrying enough to pre-fill a meal log entry
type TemplateItem struct {
	FoodItemID string  `json:"food_item_id" bson:"food_item_id"`
	FoodName   string  `json:"food_name" bson:"food_name"`
	Quantity   float64 `json:"quantity" bson:"quantity"`
	Unit       string  `json:"unit" bson:"unit"`
}

// MealTemplate is a saved combination of foods for quick meal entry.
// UsageCount and LastUsedAt track how often the template is applied,
// which drives the most-used-first listing order.
type MealTemplate struct {
	ID          string         `json:"id" bson:"id"`
	Name        string         `json:"name" bson:"name"`
	Description string         `json:"description,omitempty" bson:"description"`
	Category    MealCategory   `json:"category" bson:"category"`
	Items       []TemplateItem `json:"items" bson:"items"`
	IsFavorite  bool           `json:"is_favorite" bson:"is_favorite"`
	UsageCount  int            `json:"usage_count" bson:"usage_count"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	LastUsedAt  *time.Time     `json:"last_used_at,omitempty" bson:"last_used_at,omitempty"`
}
