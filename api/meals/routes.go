package meals

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/segmentio/ksuid"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/report"
	"github.com/librediet/librediet-api/types"
	"github.com/librediet/librediet-api/util"
)

// Routes creates a new Chi router with all of the routes for the meal
// resource, at the root level
func Routes(database db.Provider, aggregator *report.Aggregator) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetRange(database))
	router.Post("/", Create(database))
	router.Delete("/", DeleteRange(database))
	router.Get("/summary", Summary(aggregator))
	router.Get("/summary/today", SummaryToday(aggregator))
	router.Get("/{id}", GetSingle(database))
	router.Patch("/{id}", Update(database))
	router.Delete("/{id}", Delete(database))
	return router
}

// parseRangeParams extracts the half-open [start, end) bounds from the
// 'start' and 'end' query parameters, accepting RFC 3339 timestamps or
// bare dates (a bare date resolves to its local midnight)
func parseRangeParams(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseTimeParam(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' query parameter: %s", err)
	}

	end, err := parseTimeParam(r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' query parameter: %s", err)
	}

	return start, end, nil
}

func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("parameter is required")
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, errors.New("expected an RFC 3339 timestamp or a YYYY-MM-DD date")
	}

	return parsed, nil
}

// GetRange gets all meals logged in the half-open [start, end) range,
// most recent first
func GetRange(mealProvider db.MealProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := parseRangeParams(r)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		meals, err := mealProvider.GetMealsInRange(r.Context(), start, end)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"meals": meals,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// createRequest is the JSON shape for logging a meal. Nutrient fields
// carry totals already scaled to the logged quantity and are accepted
// leniently (invalid values save as 0 instead of failing).
type createRequest struct {
	FoodItemID string      `json:"food_item_id"`
	FoodName   string      `json:"food_name"`
	Category   string      `json:"category"`
	Quantity   interface{} `json:"quantity"`
	Unit       string      `json:"unit"`

	Calories      interface{} `json:"calories"`
	Protein       interface{} `json:"protein"`
	Carbohydrates interface{} `json:"carbohydrates"`
	Fat           interface{} `json:"fat"`
	Fiber         interface{} `json:"fiber"`
	Sugar         interface{} `json:"sugar"`
	Sodium        interface{} `json:"sodium"`

	Timestamp *time.Time `json:"timestamp"`
	Notes     string     `json:"notes"`
}

// Create logs a new meal in the database.
// A failed write is reported to the caller; losing a logged meal
// silently is not acceptable.
func Create(mealProvider db.MealProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request createRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			util.Error(w, err)
			return
		}

		request.FoodName = strings.TrimSpace(request.FoodName)
		if request.FoodName == "" {
			util.ErrorWithCode(w, errors.New("meal food name cannot be empty"),
				http.StatusBadRequest)
			return
		}

		category, err := types.ParseMealCategory(request.Category)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		timestamp := time.Now()
		if request.Timestamp != nil {
			timestamp = *request.Timestamp
		}

		id, err := ksuid.NewRandom()
		if err != nil {
			util.Error(w, err)
			return
		}

		meal := types.Meal{
			ID:            id.String(),
			FoodItemID:    strings.TrimSpace(request.FoodItemID),
			FoodName:      request.FoodName,
			Category:      category,
			Quantity:      util.ParseNutrient(request.Quantity),
			Unit:          strings.TrimSpace(request.Unit),
			Calories:      util.ParseNutrient(request.Calories),
			Protein:       util.ParseNutrient(request.Protein),
			Carbohydrates: util.ParseNutrient(request.Carbohydrates),
			Fat:           util.ParseNutrient(request.Fat),
			Fiber:         util.ParseNutrient(request.Fiber),
			Sugar:         util.ParseNutrient(request.Sugar),
			Sodium:        util.ParseNutrient(request.Sodium),
			Timestamp:     timestamp,
			Notes:         request.Notes,
		}

		err = mealProvider.CreateMeal(r.Context(), meal)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single meal as the top-level JSON
		jsonResponse, err := json.Marshal(meal)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write(jsonResponse)
	}
}

// Summary computes the nutrition summary over the half-open
// [start, end) range
func Summary(aggregator *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := parseRangeParams(r)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		summary, err := aggregator.SummaryForRange(r.Context(), start, end)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the summary as the top-level JSON
		jsonResponse, err := json.Marshal(summary)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// SummaryToday computes the nutrition summary for the current day,
// from its midnight (inclusive) to the next midnight (exclusive)
func SummaryToday(aggregator *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := aggregator.SummaryForDay(r.Context(), time.Now())
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the summary as the top-level JSON
		jsonResponse, err := json.Marshal(summary)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// GetSingle gets a single meal from the database by its ID
func GetSingle(mealProvider db.MealProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		meal, err := mealProvider.GetMeal(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single meal as the top-level JSON
		jsonResponse, err := json.Marshal(meal)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Update updates a meal in the database
func Update(mealProvider db.MealProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		partial := make(map[string]interface{})
		err := json.NewDecoder(r.Body).Decode(&partial)
		if err != nil {
			util.Error(w, err)
			return
		}

		// The identity is managed by the store
		delete(partial, "id")

		updated, err := mealProvider.UpdateMeal(r.Context(), id, partial)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the updated meal as the top-level JSON
		jsonResponse, err := json.Marshal(updated)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Delete deletes a meal in the database
func Delete(mealProvider db.MealProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		err := mealProvider.DeleteMeal(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteRange bulk-deletes all meals logged in the half-open
// [start, end) range
func DeleteRange(mealProvider db.MealProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := parseRangeParams(r)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		deleted, err := mealProvider.DeleteMealsInRange(r.Context(), start, end)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the count in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"deleted": deleted,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}
