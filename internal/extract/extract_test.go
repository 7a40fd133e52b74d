package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// put grows the row matrix as needed and sets one cell.
func put(rows [][]interface{}, r, c int, v interface{}) [][]interface{} {
	for len(rows) <= r {
		rows = append(rows, []interface{}{})
	}
	row := rows[r]
	for len(row) <= c {
		row = append(row, nil)
	}
	row[c] = v
	rows[r] = row
	return rows
}

func legacyWorkbook() *workbook.MemoryWorkbook {
	panel := [][]interface{}{
		{nil, "Nome do Cliente", nil, nil, "Empresa X"},
		{nil, "Data-base", nil, nil, "2025-10-01"},
		{nil, "Saldo Inicial", nil, nil, 5000.0},
		{nil, "Cenário", nil, nil, "Realista"},
	}

	var profecia [][]interface{}
	profecia = put(profecia, 3, 0, "(=) FATURAMENTO TOTAL")
	profecia = put(profecia, 3, 2, 100.0)
	profecia = put(profecia, 3, 3, 0.0)
	profecia = put(profecia, 3, 4, 200.0)
	profecia = put(profecia, 4, 0, "LINHA DO GRÁFICO")
	profecia = put(profecia, 4, 2, 10.0)
	profecia = put(profecia, 4, 3, 20.0)

	return workbook.NewMemoryWorkbook().
		AddSheet(layout.SheetControlPanel, panel).
		AddSheet(layout.SheetProfecia, profecia).
		AddSheet(layout.SheetVendas, nil)
}

func TestExtractParamsLegacy(t *testing.T) {
	today := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	p := ExtractParams(legacyWorkbook(), layout.VariantProfecia, today)

	if p.ClientName != "Empresa X" {
		t.Errorf("ClientName = %q, want Empresa X", p.ClientName)
	}
	if !p.BaseDate.Equal(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BaseDate = %v, want 2025-10-01", p.BaseDate)
	}
	if !p.OpeningBalance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("OpeningBalance = %s, want 5000", p.OpeningBalance)
	}
	for _, field := range []string{"nome_cliente", "data_base", "saldo_inicial", "cenario"} {
		if p.Provenance[field] != FromSheet {
			t.Errorf("provenance of %s = %v, want planilha", field, p.Provenance[field])
		}
	}
}

func TestExtractParamsDefaults(t *testing.T) {
	today := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetFDCReal, nil)

	p := ExtractParams(wb, layout.VariantHabitus, today)
	if p.ClientName != "Cliente Importado" {
		t.Errorf("ClientName = %q, want default", p.ClientName)
	}
	if !p.BaseDate.Equal(today) {
		t.Errorf("BaseDate = %v, want today", p.BaseDate)
	}
	if !p.OpeningBalance.IsZero() {
		t.Errorf("OpeningBalance = %s, want 0", p.OpeningBalance)
	}
	for field, prov := range p.Provenance {
		if prov != FromDefault {
			t.Errorf("provenance of %s = %v, want padrao", field, prov)
		}
	}
}

func TestExtractParamsHabitusClientName(t *testing.T) {
	var fdc [][]interface{}
	fdc = put(fdc, 0, 1, "Acme Ltda")
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetFDCReal, fdc)

	p := ExtractParams(wb, layout.VariantHabitus, time.Now())
	if p.ClientName != "Acme Ltda" {
		t.Errorf("ClientName = %q, want Acme Ltda", p.ClientName)
	}
	if p.Provenance["nome_cliente"] != FromSheet {
		t.Errorf("nome_cliente provenance = %v, want planilha", p.Provenance["nome_cliente"])
	}
}

func TestCategorySeriesForSkipsBlankAndZero(t *testing.T) {
	months := ForecastMonths()
	series, err := CategorySeriesFor(legacyWorkbook(), layout.VariantProfecia, months)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}

	s := series[0]
	if s.Mapping.Name != "FATURAMENTO" {
		t.Errorf("mapping = %s, want FATURAMENTO", s.Mapping.Name)
	}
	if len(s.Points) != 2 {
		t.Fatalf("got %d points, want 2 (zero cell skipped)", len(s.Points))
	}
	if !s.Points[0].Value.Equal(decimal.NewFromInt(100)) || !s.Points[0].Date.Equal(months[0]) {
		t.Errorf("point 0 = %s @ %v, want 100 @ %v", s.Points[0].Value, s.Points[0].Date, months[0])
	}
	if !s.Points[1].Value.Equal(decimal.NewFromInt(200)) || !s.Points[1].Date.Equal(months[2]) {
		t.Errorf("point 1 = %s @ %v, want 200 @ %v", s.Points[1].Value, s.Points[1].Date, months[2])
	}
}

func TestGraphBaselineLegacy(t *testing.T) {
	months := ForecastMonths()
	points := GraphBaseline(legacyWorkbook(), layout.VariantProfecia, months)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if !points[0].Value.Equal(decimal.NewFromInt(10)) || !points[1].Value.Equal(decimal.NewFromInt(20)) {
		t.Errorf("points = %s, %s, want 10, 20", points[0].Value, points[1].Value)
	}
}

func TestGraphBaselineHabitusComposition(t *testing.T) {
	months := ForecastMonths()

	var vendas, invest, fin, desp [][]interface{}
	vendas = put(vendas, 8, 2, 100.0)
	invest = put(invest, 5, 2, 10.0)
	invest = put(invest, 6, 2, 5.0)
	fin = put(fin, 5, 2, 20.0)
	fin = put(fin, 6, 2, 5.0)
	desp = put(desp, 5, 2, 40.0)

	wb := workbook.NewMemoryWorkbook().
		AddSheet(layout.SheetFDCReal, nil).
		AddSheet(layout.SheetVendas, vendas).
		AddSheet(layout.SheetInvestments, invest).
		AddSheet(layout.SheetFinancing, fin).
		AddSheet(layout.SheetExpenses, desp)

	points := GraphBaseline(wb, layout.VariantHabitus, months)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1 (all-zero months skipped)", len(points))
	}
	// 100 + 10 - 5 + 20 - 5 - 40
	if !points[0].Value.Equal(decimal.NewFromInt(80)) {
		t.Errorf("net = %s, want 80", points[0].Value)
	}
}

func TestGraphBaselineHabitusMissingComponentSheets(t *testing.T) {
	months := ForecastMonths()

	var vendas [][]interface{}
	vendas = put(vendas, 8, 2, 100.0)
	wb := workbook.NewMemoryWorkbook().
		AddSheet(layout.SheetFDCReal, nil).
		AddSheet(layout.SheetVendas, vendas)

	points := GraphBaseline(wb, layout.VariantHabitus, months)
	if len(points) != 1 || !points[0].Value.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("missing component sheets must contribute zero, got %v", points)
	}
}

func TestGraphBaselineHabitusFallbackToGrossRevenue(t *testing.T) {
	months := ForecastMonths()

	var fdc [][]interface{}
	fdc = put(fdc, 3, 0, "(=) FATURAMENTO TOTAL")
	fdc = put(fdc, 3, 2, 70.0)
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetFDCReal, fdc)

	points := GraphBaseline(wb, layout.VariantHabitus, months)
	if len(points) != 1 || !points[0].Value.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("fallback series = %v, want single 70", points)
	}
}

func TestRealizedSeries(t *testing.T) {
	months := ForecastMonths()

	var fdc [][]interface{}
	fdc = put(fdc, 62, 3, 50.0)
	fdc = put(fdc, 62, 4, 60.0)
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetFDCReal, fdc)

	points := RealizedSeries(wb, layout.VariantHabitus, months)
	if len(points) != 2 {
		t.Fatalf("got %d realized points, want 2", len(points))
	}
	if !points[0].Value.Equal(decimal.NewFromInt(50)) || !points[0].Date.Equal(months[0]) {
		t.Errorf("realized[0] = %s @ %v", points[0].Value, points[0].Date)
	}

	// Legacy column offset starts one to the left.
	legacy := RealizedSeries(wb, layout.VariantProfecia, months)
	if len(legacy) != 2 || !legacy[0].Date.Equal(months[1]) {
		t.Errorf("legacy offset mismatch: %v", legacy)
	}
}

func TestRealizedSeriesAbsentSheet(t *testing.T) {
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetProfecia, nil)
	if got := RealizedSeries(wb, layout.VariantProfecia, ForecastMonths()); got != nil {
		t.Errorf("expected nil series without FDC-REAL, got %v", got)
	}
}

func TestExtractIndicators(t *testing.T) {
	var ind [][]interface{}
	ind = put(ind, 2, 2, 1234.5)
	ind = put(ind, 3, 2, 800.0)
	ind = put(ind, 4, 2, 0.0923)
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetIndicators, ind)

	got := ExtractIndicators(wb)
	if !got.FreeCashFlowGen.Equal(decimal.NewFromFloat(1234.5)) {
		t.Errorf("FreeCashFlowGen = %s, want 1234.5", got.FreeCashFlowGen)
	}
	if !got.BreakEvenPoint.Equal(decimal.NewFromInt(800)) {
		t.Errorf("BreakEvenPoint = %s, want 800", got.BreakEvenPoint)
	}
	// Fractions in (0, 1] are promoted to percentages.
	if !got.FixedCostPct.Equal(decimal.NewFromFloat(9.23)) {
		t.Errorf("FixedCostPct = %s, want 9.23", got.FixedCostPct)
	}
}

func TestExtractIndicatorsAbsentSheet(t *testing.T) {
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetFDCReal, nil)
	got := ExtractIndicators(wb)
	if !got.FreeCashFlowGen.IsZero() || !got.BreakEvenPoint.IsZero() || !got.FixedCostPct.IsZero() {
		t.Errorf("absent sheet must yield zero indicators, got %+v", got)
	}
}

func TestExtractIndicatorsAlreadyPercent(t *testing.T) {
	var ind [][]interface{}
	ind = put(ind, 4, 2, 42.5)
	wb := workbook.NewMemoryWorkbook().AddSheet(layout.SheetIndicators, ind)

	got := ExtractIndicators(wb)
	if !got.FixedCostPct.Equal(decimal.NewFromFloat(42.5)) {
		t.Errorf("FixedCostPct = %s, want 42.5 unchanged", got.FixedCostPct)
	}
}
