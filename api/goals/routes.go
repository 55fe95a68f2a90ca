package goals

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/report"
	"github.com/librediet/librediet-api/types"
	"github.com/librediet/librediet-api/util"
)

// Routes creates a new Chi router with all of the routes for the daily
// nutrition goals, at the root level
func Routes(database db.Provider, aggregator *report.Aggregator) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", Get(database))
	router.Put("/", Save(database))
	router.Get("/progress", Progress(database, aggregator))
	return router
}

// Get gets the daily nutrition goals,
// returning the defaults when none were ever saved
func Get(goalsProvider db.NutritionGoalsProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		goals, err := goalsProvider.GetNutritionGoals(r.Context())
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the goals as the top-level JSON
		jsonResponse, err := json.Marshal(goals)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// saveRequest is the JSON shape for saving the daily goals.
// Target fields are accepted leniently like nutrient values;
// an omitted field keeps its default target.
type saveRequest struct {
	DailyCalories      interface{} `json:"daily_calories"`
	DailyProtein       interface{} `json:"daily_protein"`
	DailyCarbohydrates interface{} `json:"daily_carbohydrates"`
	DailyFat           interface{} `json:"daily_fat"`
	DailyFiber         interface{} `json:"daily_fiber"`
	DailySugar         interface{} `json:"daily_sugar"`
	DailySodium        interface{} `json:"daily_sodium"`
}

// Save replaces the daily nutrition goals
func Save(goalsProvider db.NutritionGoalsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request saveRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			util.Error(w, err)
			return
		}

		defaults := types.DefaultNutritionGoals()
		goals := types.NutritionGoals{
			DailyCalories:      targetValue(request.DailyCalories, defaults.DailyCalories),
			DailyProtein:       targetValue(request.DailyProtein, defaults.DailyProtein),
			DailyCarbohydrates: targetValue(request.DailyCarbohydrates, defaults.DailyCarbohydrates),
			DailyFat:           targetValue(request.DailyFat, defaults.DailyFat),
			DailyFiber:         targetValue(request.DailyFiber, defaults.DailyFiber),
			DailySugar:         targetValue(request.DailySugar, defaults.DailySugar),
			DailySodium:        targetValue(request.DailySodium, defaults.DailySodium),
		}

		err = goalsProvider.SaveNutritionGoals(r.Context(), goals)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the saved goals as the top-level JSON
		jsonResponse, err := json.Marshal(goals)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Progress reports today's consumption measured against the goals
func Progress(goalsProvider db.NutritionGoalsProvider, aggregator *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goals, err := goalsProvider.GetNutritionGoals(r.Context())
		if err != nil {
			util.Error(w, err)
			return
		}

		summary, err := aggregator.SummaryForDay(r.Context(), time.Now())
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the goals, the summary, and the per-nutrient progress
		// in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"goals":    goals,
			"summary":  summary,
			"progress": report.Progress(goals, summary),
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

// targetValue coerces a goal target, keeping the default for an
// omitted field
func targetValue(value interface{}, fallback float64) float64 {
	if value == nil {
		return fallback
	}

	return util.ParseNutrient(value)
}
