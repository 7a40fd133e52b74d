package extract

import (
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/catalog"
	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// Point is one monthly value of a series.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// CategorySeries pairs a resolved catalog mapping with its monthly points.
type CategorySeries struct {
	Mapping catalog.Mapping
	Points  []Point
}

// Row/column geometry of the flow sheets. Data rows start below the two
// header rows; the twelve value cells sit at a fixed column offset.
const (
	dataRowStart  = 3
	valueColStart = 2

	// The Habitus FDC-REAL sheet shifts realized values one column right.
	habitusRealizedColStart = 3

	// Realized results occupy sheet row 63 in both layouts.
	realizedRow = 62
)

// CategorySeriesFor resolves every catalog label against the variant's
// flow sheet and extracts its twelve monthly values. Labels with no
// matching row are simply absent. Blank and exactly-zero cells are skipped.
func CategorySeriesFor(wb workbook.Workbook, variant layout.Variant, months []time.Time) ([]CategorySeries, error) {
	sheet := layout.SheetProfecia
	if variant == layout.VariantHabitus {
		sheet = layout.SheetFDCReal
	}
	grid, err := wb.Sheet(sheet)
	if err != nil {
		return nil, err
	}

	var out []CategorySeries
	for _, m := range catalog.Mappings() {
		row := catalog.FindRow(grid, m.Label, dataRowStart)
		if row < 0 {
			continue
		}
		points := rowPoints(grid, row, valueColStart, months)
		if len(points) == 0 {
			continue
		}
		out = append(out, CategorySeries{Mapping: m, Points: points})
	}
	return out, nil
}

// rowPoints reads one value cell per month at a fixed column offset,
// skipping cells that are blank or exactly zero.
func rowPoints(grid *workbook.Grid, row, startCol int, months []time.Time) []Point {
	var points []Point
	for i, month := range months {
		cell := grid.Cell(row, startCol+i)
		if cell.Kind != workbook.CellNumber || cell.Number == 0 {
			continue
		}
		points = append(points, Point{Date: month, Value: decimal.NewFromFloat(cell.Number)})
	}
	return points
}

// rowValues reads a full twelve-slot value row, zero-filling blanks, for
// series that are combined arithmetically before being emitted.
func rowValues(grid *workbook.Grid, row, startCol, n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		cell := grid.Cell(row, startCol+i)
		if cell.Kind == workbook.CellNumber {
			out[i] = decimal.NewFromFloat(cell.Number)
		} else {
			out[i] = decimal.Zero
		}
	}
	return out
}
