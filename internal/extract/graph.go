package extract

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/catalog"
	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// Rows composing the headline graph series, per variant.
const (
	legacyGraphRow = 4

	vendasBaseRow = 8

	investInflowRow     = 5
	investOutflowRow    = 6
	financingInflowRow  = 5
	financingOutflowRow = 6
	expensesRow         = 5

	grossRevenueKeyword = "FATURAMENTO"
)

// GraphBaseline computes the single designated inflow series plotted as the
// primary forecast line. Composition is layout-dependent; every missing
// sheet or out-of-range row contributes zero instead of failing, and when
// no variant yields a series ingestion continues without a chart line.
func GraphBaseline(wb workbook.Workbook, variant layout.Variant, months []time.Time) []Point {
	switch variant {
	case layout.VariantProfecia:
		grid, err := wb.Sheet(layout.SheetProfecia)
		if err != nil {
			log.Printf("[Extract] graph baseline: PROFECIA unreadable: %v", err)
			return nil
		}
		return rowPoints(grid, legacyGraphRow, valueColStart, months)

	case layout.VariantHabitus:
		if _, ok := layout.HasSheet(wb.SheetNames(), layout.SheetVendas); ok {
			return habitusComposedBaseline(wb, months)
		}
		// No revenue sheet: fall back to the gross revenue row of FDC-REAL.
		grid, err := wb.Sheet(layout.SheetFDCReal)
		if err != nil {
			log.Printf("[Extract] graph baseline: FDC-REAL unreadable: %v", err)
			return nil
		}
		row := catalog.FindRow(grid, grossRevenueKeyword, 0)
		if row < 0 {
			log.Printf("[Extract] graph baseline: no %s row found, skipping chart line", grossRevenueKeyword)
			return nil
		}
		return rowPoints(grid, row, valueColStart, months)
	}
	return nil
}

// habitusComposedBaseline starts from the VENDAS revenue row and adjusts
// each month with the investment/financing/expense component rows:
//
//	net = base + investIn - investOut + finIn - finOut - expenses
//
// Each component degrades to zero when its sheet or row is unavailable.
func habitusComposedBaseline(wb workbook.Workbook, months []time.Time) []Point {
	n := len(months)

	base := componentRow(wb, layout.SheetVendas, vendasBaseRow, n)
	if base == nil {
		log.Printf("[Extract] graph baseline: VENDAS row unreadable, skipping chart line")
		return nil
	}
	investIn := componentRow(wb, layout.SheetInvestments, investInflowRow, n)
	investOut := componentRow(wb, layout.SheetInvestments, investOutflowRow, n)
	finIn := componentRow(wb, layout.SheetFinancing, financingInflowRow, n)
	finOut := componentRow(wb, layout.SheetFinancing, financingOutflowRow, n)
	expenses := componentRow(wb, layout.SheetExpenses, expensesRow, n)

	var points []Point
	for i, month := range months {
		net := base[i].
			Add(at(investIn, i)).
			Sub(at(investOut, i)).
			Add(at(finIn, i)).
			Sub(at(finOut, i)).
			Sub(at(expenses, i))
		if net.IsZero() {
			continue
		}
		points = append(points, Point{Date: month, Value: net})
	}
	return points
}

// componentRow reads a full zero-filled value row, or nil when the sheet
// itself is absent.
func componentRow(wb workbook.Workbook, sheet string, row, n int) []decimal.Decimal {
	name, ok := layout.HasSheet(wb.SheetNames(), sheet)
	if !ok {
		return nil
	}
	grid, err := wb.Sheet(name)
	if err != nil {
		log.Printf("[Extract] graph baseline: %s unreadable: %v", sheet, err)
		return nil
	}
	return rowValues(grid, row, valueColStart, n)
}

func at(vals []decimal.Decimal, i int) decimal.Decimal {
	if vals == nil || i >= len(vals) {
		return decimal.Zero
	}
	return vals[i]
}
