package report

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/librediet/librediet-api/types"
)

// Font sizes used throughout the document tree
const (
	titleFontSize   = 20
	periodFontSize  = 12
	headingFontSize = 14
	headerFontSize  = 10
	cellFontSize    = 8
	footerFontSize  = 8
)

const documentDateFormat = "2006-01-02"
const documentDateTimeFormat = "2006-01-02 15:04"

// Alignment is the horizontal alignment of a text node
type Alignment string

// The supported text alignments
const (
	AlignLeft   Alignment = "LEFT"
	AlignCenter Alignment = "CENTER"
)

// Node is a single element of a report document tree.
// The concrete types are Title, Paragraph, and Table; consumers
// (PDF or print renderers) are expected to switch over all three.
type Node interface {
	node()
}

// Title is a top-level heading node
type Title struct {
	Text     string    `json:"text"`
	FontSize float64   `json:"font_size"`
	Align    Alignment `json:"align"`
}

// Paragraph is a block of text, optionally emphasized
type Paragraph struct {
	Text     string    `json:"text"`
	FontSize float64   `json:"font_size"`
	Bold     bool      `json:"bold"`
	Align    Alignment `json:"align"`
}

// Table is a grid of cells with an optional header row.
// ColumnWeights are relative width proportions.
type Table struct {
	ColumnWeights []float64 `json:"column_weights"`
	Header        []Cell    `json:"header,omitempty"`
	Rows          [][]Cell  `json:"rows"`
}

// Cell is a single table cell
type Cell struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
}

func (Title) node()     {}
func (Paragraph) node() {}
func (Table) node()     {}

// Document is a renderer-agnostic report artifact: an ordered tree of
// title, paragraph, and table nodes that any PDF or print backend can
// consume
type Document struct {
	Nodes []Node
}

// MarshalJSON encodes the document with an explicit kind tag per node
// so consumers can reconstruct the variant
func (d Document) MarshalJSON() ([]byte, error) {
	type envelope struct {
		Kind string `json:"kind"`
		Node Node   `json:"node"`
	}

	envelopes := make([]envelope, 0, len(d.Nodes))
	for _, node := range d.Nodes {
		var kind string
		switch node.(type) {
		case Title:
			kind = "title"
		case Paragraph:
			kind = "paragraph"
		case Table:
			kind = "table"
		default:
			return nil, fmt.Errorf("unknown document node type %T", node)
		}
		envelopes = append(envelopes, envelope{Kind: kind, Node: node})
	}

	return json.Marshal(map[string]interface{}{
		"nodes": envelopes,
	})
}

// BuildDocument renders a meal list and its summary into the
// PDF-like document tree, per the report options. Rows are emitted in
// input order; grouping by day only partitions the detail table into
// per-day sub-sections without re-sorting. Building is pure data
// shaping: an empty meal list produces a summary-only or empty-detail
// document, never a failure.
func BuildDocument(meals []types.Meal, summary types.NutritionSummary, options types.ReportOptions) *Document {
	doc := &Document{}

	doc.Nodes = append(doc.Nodes, Title{
		Text:     "LibreDiet - Meal Report",
		FontSize: titleFontSize,
		Align:    AlignCenter,
	})
	doc.Nodes = append(doc.Nodes, Paragraph{
		Text: "Period: " + options.StartDate.Format(documentDateFormat) +
			" to " + options.EndDate.Format(documentDateFormat),
		FontSize: periodFontSize,
		Align:    AlignCenter,
	})

	if options.IncludeNutritionSummary {
		doc.Nodes = append(doc.Nodes, summarySection(summary)...)
	}

	if options.IncludeMealDetails && len(meals) > 0 {
		doc.Nodes = append(doc.Nodes, detailSection(meals, options.GroupByDay)...)
	}

	doc.Nodes = append(doc.Nodes, Paragraph{
		Text:     "Generated by LibreDiet",
		FontSize: footerFontSize,
		Align:    AlignCenter,
	})

	return doc
}

// summarySection builds the two-column label/value summary table,
// with display values truncated to whole numbers
func summarySection(summary types.NutritionSummary) []Node {
	heading := Paragraph{
		Text:     "Nutrition Summary",
		FontSize: headingFontSize,
		Bold:     true,
		Align:    AlignLeft,
	}

	table := Table{
		ColumnWeights: []float64{1, 1},
		Rows: [][]Cell{
			{{Text: "Total Meals"}, {Text: strconv.Itoa(summary.MealCount)}},
			{{Text: "Total Calories"}, {Text: fmt.Sprintf("%d kcal", int(summary.TotalCalories))}},
			{{Text: "Total Protein"}, {Text: fmt.Sprintf("%d g", int(summary.TotalProtein))}},
			{{Text: "Total Carbohydrates"}, {Text: fmt.Sprintf("%d g", int(summary.TotalCarbohydrates))}},
			{{Text: "Total Fat"}, {Text: fmt.Sprintf("%d g", int(summary.TotalFat))}},
			{{Text: "Total Fiber"}, {Text: fmt.Sprintf("%d g", int(summary.TotalFiber))}},
		},
	}

	return []Node{heading, table}
}

// detailSection builds the seven-column meal table, either as one flat
// table or partitioned into per-day sub-sections
func detailSection(meals []types.Meal, groupByDay bool) []Node {
	nodes := []Node{Paragraph{
		Text:     "Meal Details",
		FontSize: headingFontSize,
		Bold:     true,
		Align:    AlignLeft,
	}}

	if !groupByDay {
		return append(nodes, mealTable(meals))
	}

	// Partition into runs of meals sharing a calendar day,
	// preserving input order
	for start := 0; start < len(meals); {
		day := types.StartOfDay(meals[start].Timestamp)
		end := start
		for end < len(meals) && types.StartOfDay(meals[end].Timestamp).Equal(day) {
			end++
		}

		nodes = append(nodes, Paragraph{
			Text:     day.Format(documentDateFormat),
			FontSize: periodFontSize,
			Bold:     true,
			Align:    AlignLeft,
		})
		nodes = append(nodes, mealTable(meals[start:end]))

		start = end
	}

	return nodes
}

func mealTable(meals []types.Meal) Table {
	table := Table{
		ColumnWeights: []float64{2, 1.5, 3, 1, 1, 1, 1},
		Header:        headerCells("Date/Time", "Category", "Food", "Qty", "Cal", "P", "C"),
	}

	for _, meal := range meals {
		table.Rows = append(table.Rows, []Cell{
			dataCell(meal.Timestamp.Format(documentDateTimeFormat)),
			dataCell(meal.Category.DisplayName()),
			dataCell(meal.FoodName),
			dataCell(fmt.Sprintf("%s %s", formatFloat(meal.Quantity), meal.Unit)),
			dataCell(strconv.Itoa(int(meal.Calories))),
			dataCell(strconv.Itoa(int(meal.Protein))),
			dataCell(strconv.Itoa(int(meal.Carbohydrates))),
		})
	}

	return table
}

func headerCells(labels ...string) []Cell {
	cells := make([]Cell, 0, len(labels))
	for _, label := range labels {
		cells = append(cells, Cell{
			Text:     label,
			FontSize: headerFontSize,
			Bold:     true,
		})
	}

	return cells
}

func dataCell(text string) Cell {
	return Cell{
		Text:     text,
		FontSize: cellFontSize,
	}
}
