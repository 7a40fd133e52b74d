// Package catalog holds the fixed mapping between row labels found in the
// workbooks and canonical financial categories.
package catalog

import (
	"strings"

	"HabitusForecast/internal/model"
	"HabitusForecast/internal/workbook"
)

// Mapping ties one recognized row label to its canonical category.
// Resolution is substring containment on the row's first column, so the
// label "FATURAMENTO" also matches "(=) FATURAMENTO TOTAL".
type Mapping struct {
	Label     string
	Name      string
	Flow      model.FlowType
	Direction model.Direction
}

// Synthetic categories used only for chart series, never matched to rows.
const (
	GraphCategory       = "HABITUS_FORECA$T-GRAFICO"
	LegacyGraphCategory = "PROFECIA-GRAFICO"
	RealizedCategory    = "FDC-REAL"
)

var mappings = []Mapping{
	{"FATURAMENTO", "FATURAMENTO", model.FlowOperacional, model.DirectionEntrada},
	{"ENTRADAS - OPERACIONAIS", "ENTRADAS OPERACIONAIS", model.FlowOperacional, model.DirectionEntrada},
	{"(=) MARGEM CONTRIBUIÇÃO FINANCEIRA", "MARGEM CONTRIBUIÇÃO", model.FlowOperacional, model.DirectionEntrada},
	{"(-) SAÍDAS [GASTOS FIXOS]", "GASTOS FIXOS", model.FlowOperacional, model.DirectionSaida},
	{"(+/-) FDC DAS ATIVIDADES OPERACIONAIS", "FDC OPERACIONAL", model.FlowOperacional, model.DirectionEntrada},
	{"IMPOSTOS", "IMPOSTOS", model.FlowOperacional, model.DirectionSaida},
	{"COMISSÕES", "COMISSÕES", model.FlowOperacional, model.DirectionSaida},
	{"CUSTO COM SERVIÇO PRESTADO", "CUSTOS SERVIÇOS", model.FlowOperacional, model.DirectionSaida},
	{"DESPESAS COM PESSOAL", "DESPESAS PESSOAL", model.FlowOperacional, model.DirectionSaida},
	{"DESPESAS ADMINISTRATIVAS", "DESPESAS ADMINISTRATIVAS", model.FlowOperacional, model.DirectionSaida},
	{"DESPESAS FINANCEIRAS", "DESPESAS FINANCEIRAS", model.FlowOperacional, model.DirectionSaida},
}

// Mappings returns the catalog in its fixed scan order.
func Mappings() []Mapping {
	return mappings
}

// All returns every canonical category the resolver must guarantee exists
// before entries are written, including the two synthetic chart categories.
func All() []model.Category {
	out := make([]model.Category, 0, len(mappings)+2)
	for _, m := range mappings {
		out = append(out, model.Category{Name: m.Name, Flow: m.Flow})
	}
	out = append(out,
		model.Category{Name: GraphCategory, Flow: model.FlowOperacional},
		model.Category{Name: RealizedCategory, Flow: model.FlowOperacional},
	)
	return out
}

// FindRow scans the grid top-to-bottom from fromRow and returns the index
// of the first row whose first-column text contains the label. Returns -1
// when no row matches; an unmatched label is not an error, the category is
// simply absent from this workbook.
func FindRow(grid *workbook.Grid, label string, fromRow int) int {
	for r := fromRow; r < grid.NumRows(); r++ {
		cell := grid.Cell(r, 0)
		if cell.Kind != workbook.CellString {
			continue
		}
		if strings.Contains(cell.Text, label) {
			return r
		}
	}
	return -1
}
