package extract

import (
	"log"
	"time"

	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// RealizedSeries reads the already-realized monthly inflow values from the
// FDC-REAL sheet, paired with the same synthesized month-end dates used
// everywhere else. The legacy layout carries the sheet optionally; its
// absence yields an empty series, not an error.
func RealizedSeries(wb workbook.Workbook, variant layout.Variant, months []time.Time) []Point {
	name, ok := layout.HasSheet(wb.SheetNames(), layout.SheetFDCReal)
	if !ok {
		return nil
	}
	grid, err := wb.Sheet(name)
	if err != nil {
		log.Printf("[Extract] realized series: FDC-REAL unreadable: %v", err)
		return nil
	}
	startCol := valueColStart
	if variant == layout.VariantHabitus {
		startCol = habitusRealizedColStart
	}
	return rowPoints(grid, realizedRow, startCol, months)
}
