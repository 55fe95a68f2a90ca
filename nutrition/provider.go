package nutrition

import (
	"context"

	"github.com/librediet/librediet-api/serving"
	"github.com/librediet/librediet-api/types"
)

// Provider represents a remote nutrition database implementation.
// Lookups signal a missing product with a nil result rather than an
// error; errors are reserved for transport and decoding failures
// (which callers are expected to absorb, per the resolver contract).
type Provider interface {
	LookupByBarcode(ctx context.Context, barcode string) (*RemoteProduct, error)
	SearchByText(ctx context.Context, query string) ([]RemoteProduct, error)
}

// RemoteProduct is a product record as reported by the remote
// nutrition database, with nutrient values per 100 g
type RemoteProduct struct {
	Code        string     `json:"code"`
	ProductName string     `json:"product_name"`
	Brands      string     `json:"brands"`
	ServingSize string     `json:"serving_size"`
	ImageURL    string     `json:"image_url"`
	Nutriments  Nutriments `json:"nutriments"`
}

// Nutriments carries the per-100g nutrient fields consumed from the
// remote payload. Absent fields decode to zero, which is the correct
// default for every one of them. Sodium is reported in grams.
type Nutriments struct {
	EnergyKcal    float64 `json:"energy-kcal_100g"`
	Proteins      float64 `json:"proteins_100g"`
	Carbohydrates float64 `json:"carbohydrates_100g"`
	Fat           float64 `json:"fat_100g"`
	Fiber         float64 `json:"fiber_100g"`
	Sugars        float64 `json:"sugars_100g"`
	Sodium        float64 `json:"sodium_100g"`
	SaturatedFat  float64 `json:"saturated-fat_100g"`
	Cholesterol   float64 `json:"cholesterol_100g"`
	Potassium     float64 `json:"potassium_100g"`
	VitaminA      float64 `json:"vitamin-a_100g"`
	VitaminC      float64 `json:"vitamin-c_100g"`
	Calcium       float64 `json:"calcium_100g"`
	Iron          float64 `json:"iron_100g"`
}

// FoodItem maps the remote record to a local food item.
// A record without a product name cannot be mapped and returns nil;
// the serving reference is derived leniently from the serving string,
// and the sodium value is converted from grams to the milligrams the
// local model stores.
func (p *RemoteProduct) FoodItem() *types.FoodItem {
	if p == nil || p.ProductName == "" {
		return nil
	}

	servingSize, servingUnit := serving.Parse(p.ServingSize)

	return &types.FoodItem{
		Name:          p.ProductName,
		Brand:         p.Brands,
		Barcode:       p.Code,
		ServingSize:   servingSize,
		ServingUnit:   servingUnit,
		Calories:      p.Nutriments.EnergyKcal,
		Protein:       p.Nutriments.Proteins,
		Carbohydrates: p.Nutriments.Carbohydrates,
		Fat:           p.Nutriments.Fat,
		Fiber:         p.Nutriments.Fiber,
		Sugar:         p.Nutriments.Sugars,
		Sodium:        p.Nutriments.Sodium * 1000,
		SaturatedFat:  p.Nutriments.SaturatedFat,
		Cholesterol:   p.Nutriments.Cholesterol,
		Potassium:     p.Nutriments.Potassium,
		VitaminA:      p.Nutriments.VitaminA,
		VitaminC:      p.Nutriments.VitaminC,
		Calcium:       p.Nutriments.Calcium,
		Iron:          p.Nutriments.Iron,
		ImageURL:      p.ImageURL,
		IsCustom:      false,
	}
}
