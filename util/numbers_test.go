package util

import (
	"encoding/json"
	"testing"
)

func TestParseNutrient(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"Float", 12.5, 12.5},
		{"JSONNumber", json.Number("42"), 42},
		{"NumericString", "3.75", 3.75},
		{"PaddedString", "  8 ", 8},
		{"Garbage", "abc", 0},
		{"Negative", -5.0, 0},
		{"NegativeString", "-5", 0},
		{"Nil", nil, 0},
		{"WrongType", []string{"1"}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ParseNutrient(c.value); got != c.want {
				t.Errorf("ParseNutrient(%v) = %v; want %v", c.value, got, c.want)
			}
		})
	}
}
