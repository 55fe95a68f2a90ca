package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/go-chi/chi"
	"github.com/hako/durafmt"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/report"
	"github.com/librediet/librediet-api/types"
	"github.com/librediet/librediet-api/util"
)

// Routes creates a new Chi router with all of the routes for report
// exports, at the root level
func Routes(database db.Provider) *chi.Mux {
	router := chi.NewRouter()
	router.Post("/export", Export(database))
	return router
}

// exportRequest is the JSON shape for requesting an export.
// Either a non-custom preset or explicit bounds select the date range;
// the inclusion toggles default to on when omitted.
type exportRequest struct {
	Format    string     `json:"format"`
	Preset    string     `json:"preset"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	IncludeNutritionSummary *bool `json:"include_nutrition_summary"`
	IncludeMealDetails      *bool `json:"include_meal_details"`
	GroupByDay              *bool `json:"group_by_day"`
}

// Export renders the meals in the selected range into the requested
// artifact: a CSV text blob, or the document tree for a PDF renderer
// as JSON. The artifact is fully built before the first response byte
// is written, so a failure never leaves a partial report behind.
func Export(mealProvider db.MealProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		var request exportRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			util.Error(w, err)
			return
		}

		format, err := types.ParseReportFormat(request.Format)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		start, end, err := resolveBounds(request)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		options := types.ReportOptions{
			Format:                  format,
			StartDate:               start,
			EndDate:                 end,
			IncludeNutritionSummary: toggleValue(request.IncludeNutritionSummary),
			IncludeMealDetails:      toggleValue(request.IncludeMealDetails),
			GroupByDay:              toggleValue(request.GroupByDay),
		}

		// The store returns the range pre-sorted most recent first,
		// which is the order the exporters emit
		meals, err := mealProvider.GetMealsInRange(r.Context(), start, end)
		if err != nil {
			util.Error(w, err)
			return
		}
		summary := report.Summarize(meals)

		period := durafmt.Parse(end.Sub(start)).LimitFirstN(2).String()

		switch format {
		case types.FormatCSV:
			artifact := report.RenderCSV(meals, summary, options)
			log.Printf("generated CSV report covering %s: %d meals, %s\n",
				period, len(meals), datasize.ByteSize(len(artifact)).HumanReadable())

			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=\"librediet_export_%d.csv\"", time.Now().Unix()))
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, artifact)

		case types.FormatPDF:
			document := report.BuildDocument(meals, summary, options)
			jsonResponse, err := json.Marshal(document)
			if err != nil {
				util.ErrorWithCode(w, err, http.StatusInternalServerError)
				return
			}
			log.Printf("generated PDF document tree covering %s: %d meals, %s\n",
				period, len(meals), datasize.ByteSize(len(jsonResponse)).HumanReadable())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(jsonResponse)
		}
	}
}

// resolveBounds turns the preset or the explicit dates into half-open
// [start, end) bounds
func resolveBounds(request exportRequest) (time.Time, time.Time, error) {
	if request.Preset != "" {
		preset, err := types.ParseDateRangePreset(request.Preset)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		if preset != types.PresetCustom {
			start, end := preset.Range(time.Now())
			return start, end, nil
		}
	}

	if request.StartDate == nil || request.EndDate == nil {
		return time.Time{}, time.Time{},
			errors.New("either a non-custom preset or both start_date and end_date are required")
	}
	if !request.EndDate.After(*request.StartDate) {
		return time.Time{}, time.Time{},
			errors.New("end_date must be after start_date")
	}

	return *request.StartDate, *request.EndDate, nil
}

func toggleValue(value *bool) bool {
	if value == nil {
		return true
	}

	return *value
}
