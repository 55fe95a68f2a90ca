package util

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseNutrient coerces a free-form nutrient value from a decoded JSON
// body (a number, a numeric string from a text field, or nothing)
// into a non-negative float. Unparseable or negative input yields 0
// rather than failing the save.
func ParseNutrient(value interface{}) float64 {
	var parsed float64

	switch v := value.(type) {
	case float64:
		parsed = v
	case json.Number:
		parsed, _ = v.Float64()
	case string:
		parsed, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0
	}

	if parsed < 0 {
		return 0
	}

	return parsed
}
