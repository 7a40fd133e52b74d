package extract

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/config"
	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// Provenance records whether a parameter came from the sheet or from the
// documented default, so callers and reports can tell graceful degradation
// apart from a masked bug.
type Provenance string

const (
	FromSheet   Provenance = "planilha"
	FromDefault Provenance = "padrao"
)

// Params are the scalar header fields of the control region.
type Params struct {
	ClientName     string
	BaseDate       time.Time
	OpeningBalance decimal.Decimal
	ScenarioName   string

	Provenance map[string]Provenance
}

// Control-panel header labels (legacy layout) and cell addresses.
const (
	labelClientName  = "Nome do Cliente"
	labelBaseDate    = "Data-base"
	labelOpening     = "Saldo Inicial"
	labelScenario    = "Cenário"
	panelLabelCol    = 1
	panelValueCol    = 4
	habitusClientRow = 0
	habitusClientCol = 1
)

func defaultParams(today time.Time) Params {
	return Params{
		ClientName:     "Cliente Importado",
		BaseDate:       today,
		OpeningBalance: decimal.Zero,
		ScenarioName:   config.DefaultScenarioName,
		Provenance: map[string]Provenance{
			"nome_cliente":  FromDefault,
			"data_base":     FromDefault,
			"saldo_inicial": FromDefault,
			"cenario":       FromDefault,
		},
	}
}

// ExtractParams reads the header parameters for the detected variant.
// It never fails: any unreadable field keeps its default, and a sheet-level
// read error degrades to the full default set. Ingestion must not abort
// solely because header parameters are unreadable.
func ExtractParams(wb workbook.Workbook, variant layout.Variant, today time.Time) Params {
	p := defaultParams(today)

	switch variant {
	case layout.VariantProfecia:
		grid, err := wb.Sheet(layout.SheetControlPanel)
		if err != nil {
			log.Printf("[Extract] control panel unreadable, using defaults: %v", err)
			return p
		}
		for r := 0; r < grid.NumRows(); r++ {
			label := grid.Cell(r, panelLabelCol)
			if label.Kind != workbook.CellString {
				continue
			}
			value := grid.Cell(r, panelValueCol)
			if value.IsEmpty() {
				continue
			}
			switch {
			case contains(label.Text, labelClientName):
				if value.Kind == workbook.CellString {
					p.ClientName = value.Text
					p.Provenance["nome_cliente"] = FromSheet
				}
			case contains(label.Text, labelBaseDate):
				if d, ok := cellDate(value); ok {
					p.BaseDate = d
					p.Provenance["data_base"] = FromSheet
				}
			case contains(label.Text, labelOpening):
				if value.Kind == workbook.CellNumber {
					p.OpeningBalance = decimal.NewFromFloat(value.Number)
					p.Provenance["saldo_inicial"] = FromSheet
				}
			case contains(label.Text, labelScenario):
				if value.Kind == workbook.CellString {
					p.ScenarioName = value.Text
					p.Provenance["cenario"] = FromSheet
				}
			}
		}

	case layout.VariantHabitus:
		// The current layout only carries the client name, in a fixed cell
		// of the FDC-REAL sheet. Everything else keeps its default.
		grid, err := wb.Sheet(layout.SheetFDCReal)
		if err != nil {
			log.Printf("[Extract] FDC-REAL unreadable for params, using defaults: %v", err)
			return p
		}
		if cell := grid.Cell(habitusClientRow, habitusClientCol); cell.Kind == workbook.CellString {
			p.ClientName = cell.Text
			p.Provenance["nome_cliente"] = FromSheet
		}
	}
	return p
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func cellDate(c workbook.Cell) (time.Time, bool) {
	switch c.Kind {
	case workbook.CellDate:
		return c.Date, true
	case workbook.CellString:
		if t, err := time.Parse(config.DateFormat, c.Text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
