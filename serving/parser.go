package serving

import (
	"regexp"
	"strconv"
	"strings"
)

// Defaults used when a serving descriptor is missing a part
// (nutrition databases conventionally report per 100 g)
const (
	DefaultSize = 100.0
	DefaultUnit = "g"
)

var (
	sizePattern = regexp.MustCompile(`\d+(\.\d+)?`)
	unitPattern = regexp.MustCompile(`[a-zA-Z]+`)
)

// Parse extracts a numeric size and a unit token from a free-form
// serving descriptor such as "100g" or "1 cup (240ml)".
//
// The first numeric run wins for the size and the first alphabetic run
// (lower-cased) wins for the unit; the two extractions are independent
// scans of the whole string, with no cross-validation between them.
// Serving strings in the wild are messy and this stays deliberately
// lenient: a missing or unusable part falls back to its default,
// and Parse never fails.
func Parse(descriptor string) (float64, string) {
	if strings.TrimSpace(descriptor) == "" {
		return DefaultSize, DefaultUnit
	}

	size := DefaultSize
	if match := sizePattern.FindString(descriptor); match != "" {
		parsed, err := strconv.ParseFloat(match, 64)
		if err == nil && parsed > 0 {
			size = parsed
		}
	}

	unit := DefaultUnit
	if match := unitPattern.FindString(descriptor); match != "" {
		unit = strings.ToLower(match)
	}

	return size, unit
}
