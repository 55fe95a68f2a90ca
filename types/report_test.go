package types

import (
	"testing"
	"time"
)

func TestParseReportFormat(t *testing.T) {
	cases := []struct {
		raw  string
		want ReportFormat
		ok   bool
	}{
		{"CSV", FormatCSV, true},
		{"csv", FormatCSV, true},
		{" pdf ", FormatPDF, true},
		{"xlsx", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, err := ParseReportFormat(c.raw)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseReportFormat(%q) = (%q, %v); want %q", c.raw, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseReportFormat(%q) should have failed", c.raw)
		}
	}
}

func TestParseDateRangePreset(t *testing.T) {
	cases := []struct {
		raw  string
		want DateRangePreset
		ok   bool
	}{
		{"TODAY", PresetToday, true},
		{"week", PresetWeek, true},
		{"Month", PresetMonth, true},
		{"custom", PresetCustom, true},
		{"fortnight", "", false},
	}

	for _, c := range cases {
		got, err := ParseDateRangePreset(c.raw)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseDateRangePreset(%q) = (%q, %v); want %q", c.raw, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseDateRangePreset(%q) should have failed", c.raw)
		}
	}
}

func TestPresetRange(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 30, 45, 0, time.UTC)
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)

	t.Run("Today", func(t *testing.T) {
		start, end := PresetToday.Range(now)
		if !start.Equal(today) || !end.Equal(tomorrow) {
			t.Errorf("got [%v, %v); want [%v, %v)", start, end, today, tomorrow)
		}
	})

	t.Run("Week", func(t *testing.T) {
		start, end := PresetWeek.Range(now)
		wantStart := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) || !end.Equal(tomorrow) {
			t.Errorf("got [%v, %v); want [%v, %v)", start, end, wantStart, tomorrow)
		}
	})

	t.Run("Month", func(t *testing.T) {
		start, end := PresetMonth.Range(now)
		wantStart := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) || !end.Equal(tomorrow) {
			t.Errorf("got [%v, %v); want [%v, %v)", start, end, wantStart, tomorrow)
		}
	})

	t.Run("CustomIsZero", func(t *testing.T) {
		start, end := PresetCustom.Range(now)
		if !start.IsZero() || !end.IsZero() {
			t.Errorf("custom presets carry no bounds, got [%v, %v)", start, end)
		}
	})
}

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	in := time.Date(2026, time.March, 15, 23, 59, 59, 999, loc)
	got := StartOfDay(in)
	want := time.Date(2026, time.March, 15, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay(%v) = %v; want %v", in, got, want)
	}
	if got.Location() != loc {
		t.Error("StartOfDay must preserve the location")
	}
}
