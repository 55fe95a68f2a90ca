package foods

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/segmentio/ksuid"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/resolver"
	"github.com/librediet/librediet-api/serving"
	"github.com/librediet/librediet-api/types"
	"github.com/librediet/librediet-api/util"
)

// Routes creates a new Chi router with all of the routes for the food
// item resource, at the root level
func Routes(database db.Provider, foods *resolver.Resolver) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetAll(database))
	router.Get("/search", Search(foods))
	router.Get("/barcode/{barcode}", ResolveBarcode(foods))
	router.Post("/", Create(database))
	router.Delete("/custom", DeleteCustom(database))
	router.Get("/{id}", GetSingle(database))
	router.Patch("/{id}", Update(database))
	return router
}

// GetAll gets all cached food items from the database,
// with an optional fuzzy search querystring param
func GetAll(foodItemProvider db.FoodItemProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		// See if we have search parameter,
		// which can be empty
		search := strings.ToLower(r.URL.Query().Get("search"))

		dbItems, err := foodItemProvider.GetAllFoodItems(r.Context())
		if err != nil {
			util.Error(w, err)
			return
		}

		resultItems := []types.FoodItem{}
		for _, item := range dbItems {
			// Make sure the name or brand passes a search if it was given
			if search != "" &&
				!fuzzy.MatchNormalized(search, strings.ToLower(item.Name)) &&
				!fuzzy.MatchNormalized(search, strings.ToLower(item.Brand)) {
				continue
			}

			resultItems = append(resultItems, item)
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"food_items": resultItems,
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

// Search resolves a free-text query into a combined local + remote
// candidate list via the resolver
func Search(foods *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			util.ErrorWithCode(w, errors.New("the 'q' query parameter is required"),
				http.StatusBadRequest)
			return
		}

		limit := 0
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil {
				util.ErrorWithCode(w, errors.New("the 'limit' query parameter must be an integer"),
					http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		results, err := foods.Search(r.Context(), query, limit)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"results": results,
			"count":   len(results),
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

// ResolveBarcode resolves a barcode against the local cache and the
// remote nutrition database. An unresolvable barcode is a normal
// outcome reported as a 404, signaling the client to prompt manual
// entry.
func ResolveBarcode(foods *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barcode := chi.URLParam(r, "barcode")
		if barcode == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		item, err := foods.ResolveByBarcode(r.Context(), barcode)
		if err != nil {
			util.Error(w, err)
			return
		}
		if item == nil {
			util.ErrorWithCode(w,
				errors.New("no food found for barcode '"+barcode+"'; manual entry required"),
				http.StatusNotFound)
			return
		}

		// Return the single food item as the top-level JSON
		jsonResponse, err := json.Marshal(item)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// createRequest is the JSON shape for manually entered food items.
// Nutrient fields are accepted leniently: numbers, numeric strings,
// or nothing at all (invalid values save as 0 instead of failing).
type createRequest struct {
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Barcode     string      `json:"barcode"`
	ServingSize interface{} `json:"serving_size"`
	ServingUnit string      `json:"serving_unit"`

	Calories      interface{} `json:"calories"`
	Protein       interface{} `json:"protein"`
	Carbohydrates interface{} `json:"carbohydrates"`
	Fat           interface{} `json:"fat"`
	Fiber         interface{} `json:"fiber"`
	Sugar         interface{} `json:"sugar"`
	Sodium        interface{} `json:"sodium"`
	SaturatedFat  interface{} `json:"saturated_fat"`
	Cholesterol   interface{} `json:"cholesterol"`
	Potassium     interface{} `json:"potassium"`
	VitaminA      interface{} `json:"vitamin_a"`
	VitaminC      interface{} `json:"vitamin_c"`
	Calcium       interface{} `json:"calcium"`
	Iron          interface{} `json:"iron"`

	ImageURL string `json:"image_url"`
}

// Create creates a new user-authored food item in the database
func Create(foodItemProvider db.FoodItemProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request createRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			util.Error(w, err)
			return
		}

		request.Name = strings.TrimSpace(request.Name)
		if request.Name == "" {
			util.ErrorWithCode(w, errors.New("food item name cannot be empty"),
				http.StatusBadRequest)
			return
		}

		id, err := ksuid.NewRandom()
		if err != nil {
			util.Error(w, err)
			return
		}

		servingSize := util.ParseNutrient(request.ServingSize)
		if servingSize <= 0 {
			servingSize = serving.DefaultSize
		}
		servingUnit := strings.TrimSpace(request.ServingUnit)
		if servingUnit == "" {
			servingUnit = serving.DefaultUnit
		}

		item := types.FoodItem{
			ID:            id.String(),
			Name:          request.Name,
			Brand:         strings.TrimSpace(request.Brand),
			Barcode:       strings.TrimSpace(request.Barcode),
			ServingSize:   servingSize,
			ServingUnit:   servingUnit,
			Calories:      util.ParseNutrient(request.Calories),
			Protein:       util.ParseNutrient(request.Protein),
			Carbohydrates: util.ParseNutrient(request.Carbohydrates),
			Fat:           util.ParseNutrient(request.Fat),
			Fiber:         util.ParseNutrient(request.Fiber),
			Sugar:         util.ParseNutrient(request.Sugar),
			Sodium:        util.ParseNutrient(request.Sodium),
			SaturatedFat:  util.ParseNutrient(request.SaturatedFat),
			Cholesterol:   util.ParseNutrient(request.Cholesterol),
			Potassium:     util.ParseNutrient(request.Potassium),
			VitaminA:      util.ParseNutrient(request.VitaminA),
			VitaminC:      util.ParseNutrient(request.VitaminC),
			Calcium:       util.ParseNutrient(request.Calcium),
			Iron:          util.ParseNutrient(request.Iron),
			ImageURL:      strings.TrimSpace(request.ImageURL),
			IsCustom:      true,
		}

		err = foodItemProvider.UpsertFoodItem(r.Context(), item)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single food item as the top-level JSON
		jsonResponse, err := json.Marshal(item)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write(jsonResponse)
	}
}

// GetSingle gets a single food item from the database by its ID
func GetSingle(foodItemProvider db.FoodItemProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		item, err := foodItemProvider.GetFoodItem(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single food item as the top-level JSON
		jsonResponse, err := json.Marshal(item)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Update updates a food item in the database
func Update(foodItemProvider db.FoodItemProvider) http.HandlerFunc {
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

		// The identity fields are managed by the store
		delete(partial, "id")
		delete(partial, "created_at")
		delete(partial, "updated_at")

		updated, err := foodItemProvider.UpdateFoodItem(r.Context(), id, partial)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the updated food item as the top-level JSON
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

// DeleteCustom bulk-removes every user-authored food item,
// leaving catalog items cached from the remote database in place
func DeleteCustom(foodItemProvider db.FoodItemProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := foodItemProvider.DeleteCustomFoodItems(r.Context())
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
