package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/librediet/librediet-api/types"
)

func documentOptions(details, summary, groupByDay bool) types.ReportOptions {
	return types.ReportOptions{
		Format:                  types.FormatPDF,
		StartDate:               time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                 time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC),
		IncludeMealDetails:      details,
		IncludeNutritionSummary: summary,
		GroupByDay:              groupByDay,
	}
}

func TestBuildDocument(t *testing.T) {
	meals := []types.Meal{
		{FoodName: "Oatmeal", Category: types.CategoryBreakfast, Quantity: 1, Unit: "cup",
			Calories: 150.9, Protein: 5.2, Carbohydrates: 27.8,
			Timestamp: time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)},
		{FoodName: "Salad", Category: types.CategoryLunch, Quantity: 2, Unit: "cup",
			Calories: 120, Protein: 3,
			Timestamp: time.Date(2026, time.March, 3, 12, 30, 0, 0, time.UTC)},
		{FoodName: "Pasta", Category: types.CategoryDinner, Quantity: 1.5, Unit: "cup",
			Calories: 480,
			Timestamp: time.Date(2026, time.March, 4, 19, 0, 0, 0, time.UTC)},
	}
	summary := Summarize(meals)

	t.Run("SkeletonNodes", func(t *testing.T) {
		doc := BuildDocument(meals, summary, documentOptions(false, false, false))
		if len(doc.Nodes) != 3 {
			t.Fatalf("expected title, period, and footer only, got %d nodes", len(doc.Nodes))
		}

		title, ok := doc.Nodes[0].(Title)
		if !ok {
			t.Fatalf("expected a title first, got %T", doc.Nodes[0])
		}
		if title.Text != "LibreDiet - Meal Report" || title.FontSize != 20 {
			t.Errorf("unexpected title: %+v", title)
		}

		period, ok := doc.Nodes[1].(Paragraph)
		if !ok {
			t.Fatalf("expected a period paragraph second, got %T", doc.Nodes[1])
		}
		if period.Text != "Period: 2026-03-01 to 2026-03-08" || period.FontSize != 12 {
			t.Errorf("unexpected period paragraph: %+v", period)
		}

		footer, ok := doc.Nodes[2].(Paragraph)
		if !ok {
			t.Fatalf("expected a footer paragraph last, got %T", doc.Nodes[2])
		}
		if footer.Text != "Generated by LibreDiet" || footer.FontSize != 8 {
			t.Errorf("unexpected footer: %+v", footer)
		}
	})

	t.Run("SummaryTruncatesToWholeNumbers", func(t *testing.T) {
		doc := BuildDocument(meals, summary, documentOptions(false, true, false))

		var table *Table
		for _, node := range doc.Nodes {
			if tab, ok := node.(Table); ok {
				table = &tab
				break
			}
		}
		if table == nil {
			t.Fatal("expected a summary table")
		}
		if len(table.Rows) != 6 {
			t.Fatalf("expected six summary rows, got %d", len(table.Rows))
		}
		if table.Rows[0][0].Text != "Total Meals" || table.Rows[0][1].Text != "3" {
			t.Errorf("unexpected meal count row: %+v", table.Rows[0])
		}
		// 150.9 + 120 + 480 = 750.9, displayed truncated
		if table.Rows[1][1].Text != "750 kcal" {
			t.Errorf("expected calories truncated to '750 kcal', got %q", table.Rows[1][1].Text)
		}
		if table.Rows[2][1].Text != "8 g" {
			t.Errorf("expected protein truncated to '8 g', got %q", table.Rows[2][1].Text)
		}
	})

	t.Run("FlatDetailTable", func(t *testing.T) {
		doc := BuildDocument(meals, summary, documentOptions(true, false, false))

		var table *Table
		for _, node := range doc.Nodes {
			if tab, ok := node.(Table); ok {
				table = &tab
				break
			}
		}
		if table == nil {
			t.Fatal("expected a detail table")
		}
		if len(table.Header) != 7 {
			t.Fatalf("expected seven header cells, got %d", len(table.Header))
		}
		if !table.Header[0].Bold || table.Header[0].FontSize != 10 {
			t.Errorf("unexpected header cell style: %+v", table.Header[0])
		}
		if len(table.Rows) != 3 {
			t.Fatalf("expected one row per meal, got %d", len(table.Rows))
		}

		first := table.Rows[0]
		if first[0].Text != "2026-03-03 08:00" || first[0].FontSize != 8 {
			t.Errorf("unexpected timestamp cell: %+v", first[0])
		}
		if first[1].Text != "Breakfast" || first[2].Text != "Oatmeal" {
			t.Errorf("unexpected identity cells: %+v", first[:3])
		}
		if first[3].Text != "1 cup" {
			t.Errorf("unexpected quantity cell: %+v", first[3])
		}
		if first[4].Text != "150" {
			t.Errorf("expected calories truncated to '150', got %q", first[4].Text)
		}
	})

	t.Run("GroupByDayPartitionsRuns", func(t *testing.T) {
		doc := BuildDocument(meals, summary, documentOptions(true, false, true))

		var dayHeadings []string
		var tables []Table
		for _, node := range doc.Nodes {
			switch n := node.(type) {
			case Paragraph:
				if n.Bold && n.FontSize == 12 {
					dayHeadings = append(dayHeadings, n.Text)
				}
			case Table:
				tables = append(tables, n)
			}
		}

		if len(dayHeadings) != 2 {
			t.Fatalf("expected two day headings, got %v", dayHeadings)
		}
		if dayHeadings[0] != "2026-03-03" || dayHeadings[1] != "2026-03-04" {
			t.Errorf("unexpected day headings: %v", dayHeadings)
		}
		if len(tables) != 2 {
			t.Fatalf("expected one table per day, got %d", len(tables))
		}
		if len(tables[0].Rows) != 2 || len(tables[1].Rows) != 1 {
			t.Errorf("unexpected partition sizes: %d and %d", len(tables[0].Rows), len(tables[1].Rows))
		}
	})

	t.Run("NoDetailSectionForEmptyRange", func(t *testing.T) {
		doc := BuildDocument(nil, Summarize(nil), documentOptions(true, true, true))
		for _, node := range doc.Nodes {
			if p, ok := node.(Paragraph); ok && p.Text == "Meal Details" {
				t.Fatal("an empty range must not emit a detail section")
			}
		}
	})
}

func TestDocumentMarshalJSON(t *testing.T) {
	meals := []types.Meal{
		{FoodName: "Oatmeal", Category: types.CategoryBreakfast,
			Timestamp: time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)},
	}
	doc := BuildDocument(meals, Summarize(meals), documentOptions(true, true, false))

	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var decoded struct {
		Nodes []struct {
			Kind string          `json:"kind"`
			Node json.RawMessage `json:"node"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("could not decode the marshaled document: %v", err)
	}

	if len(decoded.Nodes) != len(doc.Nodes) {
		t.Fatalf("expected %d nodes, got %d", len(doc.Nodes), len(decoded.Nodes))
	}
	if decoded.Nodes[0].Kind != "title" {
		t.Errorf("expected the first node tagged 'title', got %q", decoded.Nodes[0].Kind)
	}

	var sawTable bool
	for _, node := range decoded.Nodes {
		if node.Kind == "table" {
			sawTable = true
		}
		if node.Kind != "title" && node.Kind != "paragraph" && node.Kind != "table" {
			t.Errorf("unexpected node kind %q", node.Kind)
		}
	}
	if !sawTable {
		t.Error("expected at least one table node")
	}
	if !strings.Contains(string(encoded), `"font_size"`) {
		t.Error("expected font sizes carried in the encoded document")
	}
}
