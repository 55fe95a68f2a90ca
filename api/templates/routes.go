package templates

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/segmentio/ksuid"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/types"
	"github.com/librediet/librediet-api/util"
)

// Cap on the number of templates returned from a search
const searchLimit = 20

// Routes creates a new Chi router with all of the routes for the meal
// template resource, at the root level
func Routes(database db.Provider) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetAll(database))
	router.Get("/search", Search(database))
	router.Post("/", Create(database))
	router.Get("/{id}", GetSingle(database))
	router.Patch("/{id}", Update(database))
	router.Delete("/{id}", Delete(database))
	router.Post("/{id}/use", RecordUse(database))
	return router
}

// GetAll gets all meal templates, most used first,
// with optional 'favorite' and 'category' querystring filters
func GetAll(templateProvider db.MealTemplateProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		favoritesOnly := r.URL.Query().Get("favorite") == "true"

		var category types.MealCategory
		if rawCategory := r.URL.Query().Get("category"); rawCategory != "" {
			parsed, err := types.ParseMealCategory(rawCategory)
			if err != nil {
				util.ErrorWithCode(w, err, http.StatusBadRequest)
				return
			}
			category = parsed
		}

		dbTemplates, err := templateProvider.GetAllMealTemplates(r.Context())
		if err != nil {
			util.Error(w, err)
			return
		}

		resultTemplates := []types.MealTemplate{}
		for _, template := range dbTemplates {
			if favoritesOnly && !template.IsFavorite {
				continue
			}
			if category != "" && template.Category != category {
				continue
			}

			resultTemplates = append(resultTemplates, template)
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"templates": resultTemplates,
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

// Search gets all meal templates whose name matches the query,
// most used first
func Search(templateProvider db.MealTemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			util.ErrorWithCode(w, errors.New("the 'q' query parameter is required"),
				http.StatusBadRequest)
			return
		}

		limit := searchLimit
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil {
				util.ErrorWithCode(w, errors.New("the 'limit' query parameter must be an integer"),
					http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		templates, err := templateProvider.SearchMealTemplates(r.Context(), query, limit)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"templates": templates,
			"count":     len(templates),
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

// createRequest is the JSON shape for new meal templates
type createRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Items       []types.TemplateItem `json:"items"`
	IsFavorite  bool                 `json:"is_favorite"`
}

// Create creates a new meal template in the database
func Create(templateProvider db.MealTemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request createRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			util.Error(w, err)
			return
		}

		request.Name = strings.TrimSpace(request.Name)
		if request.Name == "" {
			util.ErrorWithCode(w, errors.New("meal template name cannot be empty"),
				http.StatusBadRequest)
			return
		}

		category, err := types.ParseMealCategory(request.Category)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		items := request.Items
		if items == nil {
			items = []types.TemplateItem{}
		}

		id, err := ksuid.NewRandom()
		if err != nil {
			util.Error(w, err)
			return
		}

		template := types.MealTemplate{
			ID:          id.String(),
			Name:        request.Name,
			Description: strings.TrimSpace(request.Description),
			Category:    category,
			Items:       items,
			IsFavorite:  request.IsFavorite,
			UsageCount:  0,
			CreatedAt:   time.Now(),
		}

		err = templateProvider.CreateMealTemplate(r.Context(), template)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single template as the top-level JSON
		jsonResponse, err := json.Marshal(template)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write(jsonResponse)
	}
}

// GetSingle gets a single meal template from the database by its ID
func GetSingle(templateProvider db.MealTemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		template, err := templateProvider.GetMealTemplate(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single template as the top-level JSON
		jsonResponse, err := json.Marshal(template)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Update updates a meal template in the database
func Update(templateProvider db.MealTemplateProvider) http.HandlerFunc {
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

		// The identity and usage fields are managed by the store
		delete(partial, "id")
		delete(partial, "created_at")
		delete(partial, "usage_count")
		delete(partial, "last_used_at")

		updated, err := templateProvider.UpdateMealTemplate(r.Context(), id, partial)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the updated template as the top-level JSON
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

// Delete deletes a meal template in the database
func Delete(templateProvider db.MealTemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		err := templateProvider.DeleteMealTemplate(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RecordUse bumps the template's usage counter and last-used time,
// returning the updated template so the client can pre-fill meal
// entries from its items
func RecordUse(templateProvider db.MealTemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		template, err := templateProvider.RecordMealTemplateUse(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the updated template as the top-level JSON
		jsonResponse, err := json.Marshal(template)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}
