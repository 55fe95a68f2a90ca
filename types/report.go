package types

import (
	"fmt"
	"strings"
	"time"
)

// ReportFormat selects the kind of artifact an export produces
type ReportFormat string

// The supported report formats
const (
	FormatCSV ReportFormat = "CSV"
	FormatPDF ReportFormat = "PDF"
)

// ParseReportFormat parses a report format from its wire value,
// accepting any casing
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToUpper(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}

	return "", fmt.Errorf("unknown report format '%s'", raw)
}

// ReportOptions configures a single export run.
// The date bounds are half-open: meals with
// StartDate <= timestamp < EndDate are included.
type ReportOptions struct {
	Format                  ReportFormat `json:"format"`
	StartDate               time.Time    `json:"start_date"`
	EndDate                 time.Time    `json:"end_date"`
	IncludeNutritionSummary bool         `json:"include_nutrition_summary"`
	IncludeMealDetails      bool         `json:"include_meal_details"`
	GroupByDay              bool         `json:"group_by_day"`
}

// DateRangePreset is a named shortcut for a commonly exported date range
type DateRangePreset string

// The supported date range presets
const (
	PresetToday  DateRangePreset = "TODAY"
	PresetWeek   DateRangePreset = "WEEK"
	PresetMonth  DateRangePreset = "MONTH"
	PresetCustom DateRangePreset = "CUSTOM"
)

// ParseDateRangePreset parses a preset from its wire value,
// accepting any casing
func ParseDateRangePreset(raw string) (DateRangePreset, error) {
	switch DateRangePreset(strings.ToUpper(strings.TrimSpace(raw))) {
	case PresetToday:
		return PresetToday, nil
	case PresetWeek:
		return PresetWeek, nil
	case PresetMonth:
		return PresetMonth, nil
	case PresetCustom:
		return PresetCustom, nil
	}

	return "", fmt.Errorf("unknown date range preset '%s'", raw)
}

// Range resolves the preset against the given reference time
// into half-open [start, end) bounds, where start is the midnight
// beginning the first covered day and end is the midnight after
// the last covered day. Custom presets carry their own bounds
// and resolve to zero times.
func (p DateRangePreset) Range(now time.Time) (time.Time, time.Time) {
	today := StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	switch p {
	case PresetToday:
		return today, tomorrow
	case PresetWeek:
		return today.AddDate(0, 0, -7), tomorrow
	case PresetMonth:
		return today.AddDate(0, -1, 0), tomorrow
	}

	return time.Time{}, time.Time{}
}

// StartOfDay truncates a time to the midnight beginning its day,
// preserving the location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
