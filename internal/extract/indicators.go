package extract

import (
	"log"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// Indicators are the three optional derived figures from the INDICADORES
// sheet. All-zero means the sheet was absent or unreadable; indicators are
// enrichment, never a reason to abort ingestion.
type Indicators struct {
	FreeCashFlowGen decimal.Decimal
	BreakEvenPoint  decimal.Decimal
	FixedCostPct    decimal.Decimal
}

// Fixed cell addresses inside the INDICADORES sheet.
const (
	indicatorFDCRow       = 2
	indicatorBreakEvenRow = 3
	indicatorFixedCostRow = 4
	indicatorValueCol     = 2
)

// ExtractIndicators locates the indicators sheet by case-insensitive name
// and reads the three fixed cells. Each cell degrades to zero on its own;
// one bad cell does not spoil the others.
func ExtractIndicators(wb workbook.Workbook) Indicators {
	var ind Indicators
	ind.FreeCashFlowGen = decimal.Zero
	ind.BreakEvenPoint = decimal.Zero
	ind.FixedCostPct = decimal.Zero

	name, ok := layout.HasSheet(wb.SheetNames(), layout.SheetIndicators)
	if !ok {
		return ind
	}
	grid, err := wb.Sheet(name)
	if err != nil {
		log.Printf("[Extract] indicators sheet unreadable: %v", err)
		return ind
	}

	ind.FreeCashFlowGen = numberAt(grid, indicatorFDCRow, indicatorValueCol)
	ind.BreakEvenPoint = numberAt(grid, indicatorBreakEvenRow, indicatorValueCol)
	ind.FixedCostPct = normalizePercent(numberAt(grid, indicatorFixedCostRow, indicatorValueCol))
	return ind
}

func numberAt(grid *workbook.Grid, row, col int) decimal.Decimal {
	cell := grid.Cell(row, col)
	if cell.Kind != workbook.CellNumber {
		return decimal.Zero
	}
	return decimal.NewFromFloat(cell.Number)
}

// normalizePercent interprets raw values in (0, 1] as fractions
// (0.0923 -> 9.23); anything else is already a percentage.
func normalizePercent(v decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if v.IsPositive() && v.Cmp(one) <= 0 {
		return v.Mul(decimal.NewFromInt(100))
	}
	return v
}
