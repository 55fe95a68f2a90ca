package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/librediet/librediet-api/types"
)

// The fixed CSV header row; column order is part of the format
const csvHeader = "Date,Time,Category,Food Name,Quantity,Unit," +
	"Calories,Protein (g),Carbs (g),Fat (g),Fiber (g),Sugar (g),Sodium (mg),Notes"

const (
	csvDateFormat        = "2006-01-02"
	csvTimeFormat        = "15:04"
	csvTimeSecondsFormat = "15:04:05"
)

// RenderCSV renders a meal list and its summary into the CSV report
// format. Meals are emitted in the order supplied (callers pass them
// pre-sorted); numeric fields are raw unrounded values, and the header
// row is always present even when meal details are suppressed.
// Rendering is pure data shaping and cannot fail.
func RenderCSV(meals []types.Meal, summary types.NutritionSummary, options types.ReportOptions) string {
	var b strings.Builder

	b.WriteString(csvHeader)
	b.WriteByte('\n')

	if options.IncludeMealDetails {
		for _, meal := range meals {
			fields := []string{
				meal.Timestamp.Format(csvDateFormat),
				csvTime(meal.Timestamp),
				meal.Category.DisplayName(),
				quoteCSV(meal.FoodName),
				formatFloat(meal.Quantity),
				meal.Unit,
				formatFloat(meal.Calories),
				formatFloat(meal.Protein),
				formatFloat(meal.Carbohydrates),
				formatFloat(meal.Fat),
				formatFloat(meal.Fiber),
				formatFloat(meal.Sugar),
				formatFloat(meal.Sodium),
				quoteCSV(meal.Notes),
			}
			b.WriteString(strings.Join(fields, ","))
			b.WriteByte('\n')
		}
	}

	if options.IncludeNutritionSummary {
		b.WriteByte('\n')
		b.WriteString("NUTRITION SUMMARY\n")
		b.WriteString("Period," + options.StartDate.Format(csvDateFormat) +
			" to " + options.EndDate.Format(csvDateFormat) + "\n")
		b.WriteString("Total Meals," + strconv.Itoa(summary.MealCount) + "\n")
		b.WriteString("Total Calories," + formatFloat(summary.TotalCalories) + "\n")
		b.WriteString("Total Protein (g)," + formatFloat(summary.TotalProtein) + "\n")
		b.WriteString("Total Carbs (g)," + formatFloat(summary.TotalCarbohydrates) + "\n")
		b.WriteString("Total Fat (g)," + formatFloat(summary.TotalFat) + "\n")
		b.WriteString("Total Fiber (g)," + formatFloat(summary.TotalFiber) + "\n")
		b.WriteString("Total Sugar (g)," + formatFloat(summary.TotalSugar) + "\n")
		b.WriteString("Total Sodium (mg)," + formatFloat(summary.TotalSodium) + "\n")
	}

	return b.String()
}

// WriteCSV renders the report and writes it to the given writer in a
// single write, so a failing writer never observes a partial artifact
func WriteCSV(w io.Writer, meals []types.Meal, summary types.NutritionSummary, options types.ReportOptions) error {
	_, err := io.WriteString(w, RenderCSV(meals, summary, options))
	return err
}

// csvTime renders a meal time, including seconds only when non-zero
func csvTime(t time.Time) string {
	if t.Second() == 0 {
		return t.Format(csvTimeFormat)
	}

	return t.Format(csvTimeSecondsFormat)
}

// quoteCSV quotes a free-text field, doubling any internal quotes
// per standard CSV quoting
func quoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
