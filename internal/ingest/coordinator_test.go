package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/catalog"
	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/model"
	"HabitusForecast/internal/scenario"
	"HabitusForecast/internal/store/storetest"
	"HabitusForecast/internal/workbook"
)

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

// habitusWorkbook carries one revenue row (100, -, 200), a realized value
// of 50 in the first month, and the client name in its fixed cell. With no
// VENDAS sheet the chart series falls back to the revenue row.
func habitusWorkbook() *workbook.MemoryWorkbook {
	var fdc [][]interface{}
	fdc = put(fdc, 0, 1, "Acme Ltda")
	fdc = put(fdc, 3, 0, "(=) FATURAMENTO TOTAL")
	fdc = put(fdc, 3, 2, 100.0)
	fdc = put(fdc, 3, 3, 0.0)
	fdc = put(fdc, 3, 4, 200.0)
	fdc = put(fdc, 62, 3, 50.0)
	return workbook.NewMemoryWorkbook().AddSheet(layout.SheetFDCReal, fdc)
}

// legacyWorkbook is the PROFECIA-era shape: header parameters on the
// Painel Controle sheet, revenue and the chart row on PROFECIA.
func legacyWorkbook() *workbook.MemoryWorkbook {
	panel := [][]interface{}{
		{nil, "Nome do Cliente", nil, nil, "Acme Ltda"},
		{nil, "Data-base", nil, nil, "2025-10-01"},
		{nil, "Saldo Inicial", nil, nil, 1000.0},
		{nil, "Cenário", nil, nil, "Realista"},
	}

	var profecia [][]interface{}
	profecia = put(profecia, 3, 0, "(=) FATURAMENTO TOTAL")
	profecia = put(profecia, 3, 2, 100.0)
	profecia = put(profecia, 3, 3, 0.0)
	profecia = put(profecia, 3, 4, 200.0)
	profecia = put(profecia, 4, 0, "LINHA DO GRÁFICO")
	profecia = put(profecia, 4, 2, 10.0)

	return workbook.NewMemoryWorkbook().
		AddSheet(layout.SheetControlPanel, panel).
		AddSheet(layout.SheetProfecia, profecia).
		AddSheet(layout.SheetVendas, nil)
}

func testInput(wb workbook.Workbook) Input {
	return Input{
		UserID:       7,
		OriginalName: "acme.xlsx",
		StoragePath:  "/uploads/abc_acme.xlsx",
		FileHash:     "deadbeef",
		Workbook:     wb,
		Today:        time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
	}
}

func amountsFor(t *testing.T, mem *storetest.Memory, scenarioID int64, category string) []decimal.Decimal {
	t.Helper()
	entries, err := mem.EntriesByScenario(context.Background(), scenarioID)
	if err != nil {
		t.Fatal(err)
	}
	var out []decimal.Decimal
	for _, e := range entries {
		if e.CategoryName == category {
			out = append(out, e.Amount)
		}
	}
	return out
}

func TestProcessEndToEnd(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	if err := mem.SaveScenarioConfig(ctx, 7, model.ScenarioConfig{
		Pessimista: decimal.NewFromInt(-10),
		Otimista:   decimal.NewFromInt(20),
		Agressivo:  decimal.NewFromInt(30),
	}); err != nil {
		t.Fatal(err)
	}

	c := NewCoordinator(mem, mem)
	result, err := c.Process(ctx, testInput(habitusWorkbook()))
	if err != nil {
		t.Fatal(err)
	}

	if len(result.ScenarioIDs) != 4 {
		t.Fatalf("got %d scenarios, want 4: %v", len(result.ScenarioIDs), result.ScenarioIDs)
	}
	for name, id := range result.ScenarioIDs {
		sc, err := mem.ScenarioByID(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		wantActive := name == scenario.NameRealista
		if sc.Active != wantActive {
			t.Errorf("scenario %s active = %v, want %v", name, sc.Active, wantActive)
		}
		if sc.ProjectID != result.ProjectID {
			t.Errorf("scenario %s project = %d, want %d", name, sc.ProjectID, result.ProjectID)
		}
	}

	project := mem.Projects[result.ProjectID]
	if project.ClientName != "Acme Ltda" {
		t.Errorf("project client = %q, want Acme Ltda", project.ClientName)
	}
	if project.UserID != 7 {
		t.Errorf("project user = %d, want 7", project.UserID)
	}

	// Revenue rows plus the fallback chart series plus one realized value.
	if result.Report.BaselineEntries != 5 {
		t.Errorf("baseline entries = %d, want 5", result.Report.BaselineEntries)
	}
	if result.Report.Categories != len(catalog.All()) {
		t.Errorf("categories = %d, want %d", result.Report.Categories, len(catalog.All()))
	}

	realistaID := result.ScenarioIDs[scenario.NameRealista]
	base := amountsFor(t, mem, realistaID, "FATURAMENTO")
	if len(base) != 2 || !base[0].Equal(decimal.NewFromInt(100)) || !base[1].Equal(decimal.NewFromInt(200)) {
		t.Errorf("baseline FATURAMENTO = %v, want [100 200]", base)
	}

	tests := []struct {
		scenario string
		want     []int64
	}{
		{scenario.NamePessimista, []int64{90, 180}},
		{scenario.NameOtimista, []int64{120, 240}},
		{scenario.NameAgressivo, []int64{130, 260}},
	}
	for _, tt := range tests {
		got := amountsFor(t, mem, result.ScenarioIDs[tt.scenario], "FATURAMENTO")
		if len(got) != len(tt.want) {
			t.Fatalf("%s FATURAMENTO has %d entries, want %d", tt.scenario, len(got), len(tt.want))
		}
		for i, w := range tt.want {
			if !got[i].Equal(decimal.NewFromInt(w)) {
				t.Errorf("%s FATURAMENTO[%d] = %s, want %d", tt.scenario, i, got[i], w)
			}
		}

		realized := amountsFor(t, mem, result.ScenarioIDs[tt.scenario], catalog.RealizedCategory)
		if len(realized) != 1 || !realized[0].Equal(decimal.NewFromInt(50)) {
			t.Errorf("%s realized = %v, want [50] unchanged", tt.scenario, realized)
		}
	}

	upload := mem.Uploads[result.UploadID]
	if upload.Status != model.UploadProcessed {
		t.Errorf("upload status = %s, want processado", upload.Status)
	}
	var persisted Report
	if err := json.Unmarshal(upload.Report, &persisted); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if persisted.Stage != StageDone {
		t.Errorf("persisted report stage = %s, want %s", persisted.Stage, StageDone)
	}
}

func TestProcessLegacyEndToEnd(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	if err := mem.SaveScenarioConfig(ctx, 7, model.ScenarioConfig{
		Pessimista: decimal.NewFromInt(-10),
		Otimista:   decimal.NewFromInt(20),
		Agressivo:  decimal.NewFromInt(30),
	}); err != nil {
		t.Fatal(err)
	}

	c := NewCoordinator(mem, mem)
	result, err := c.Process(ctx, testInput(legacyWorkbook()))
	if err != nil {
		t.Fatal(err)
	}

	if result.Report.Layout != layout.VariantProfecia.String() {
		t.Errorf("layout = %s, want %s", result.Report.Layout, layout.VariantProfecia)
	}

	// Header parameters must land on the project, not the defaults.
	project := mem.Projects[result.ProjectID]
	if !project.OpeningBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("opening balance = %s, want 1000", project.OpeningBalance)
	}
	if project.ClientName != "Acme Ltda" {
		t.Errorf("project client = %q, want Acme Ltda", project.ClientName)
	}
	if !project.BaseDate.Equal(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("base date = %v, want 2025-10-01", project.BaseDate)
	}

	base := amountsFor(t, mem, result.ScenarioIDs[scenario.NameRealista], "FATURAMENTO")
	if len(base) != 2 || !base[0].Equal(decimal.NewFromInt(100)) || !base[1].Equal(decimal.NewFromInt(200)) {
		t.Errorf("baseline FATURAMENTO = %v, want [100 200]", base)
	}

	tests := []struct {
		scenario string
		want     []int64
	}{
		{scenario.NamePessimista, []int64{90, 180}},
		{scenario.NameOtimista, []int64{120, 240}},
		{scenario.NameAgressivo, []int64{130, 260}},
	}
	for _, tt := range tests {
		got := amountsFor(t, mem, result.ScenarioIDs[tt.scenario], "FATURAMENTO")
		if len(got) != len(tt.want) {
			t.Fatalf("%s FATURAMENTO has %d entries, want %d", tt.scenario, len(got), len(tt.want))
		}
		for i, w := range tt.want {
			if !got[i].Equal(decimal.NewFromInt(w)) {
				t.Errorf("%s FATURAMENTO[%d] = %s, want %d", tt.scenario, i, got[i], w)
			}
		}
	}

	upload := mem.Uploads[result.UploadID]
	if upload.Status != model.UploadProcessed {
		t.Errorf("upload status = %s, want processado", upload.Status)
	}
}

func TestProcessReportsDuplicateWithoutBlocking(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	c := NewCoordinator(mem, mem)

	first, err := c.Process(ctx, testInput(habitusWorkbook()))
	if err != nil {
		t.Fatal(err)
	}
	if first.Report.Duplicate != nil {
		t.Errorf("first upload flagged as duplicate")
	}

	second, err := c.Process(ctx, testInput(habitusWorkbook()))
	if err != nil {
		t.Fatalf("identical bytes must still ingest: %v", err)
	}
	if second.Report.Duplicate == nil {
		t.Fatal("second upload not flagged as duplicate")
	}
	if second.Report.Duplicate.UploadID != first.UploadID {
		t.Errorf("duplicate points at upload %d, want %d", second.Report.Duplicate.UploadID, first.UploadID)
	}
	if second.ProjectID == first.ProjectID {
		t.Error("re-ingestion must create a new project")
	}
}

func TestProcessCategoryEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	c := NewCoordinator(mem, mem)

	if _, err := c.Process(ctx, testInput(habitusWorkbook())); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Process(ctx, testInput(habitusWorkbook())); err != nil {
		t.Fatal(err)
	}
	if len(mem.Categories) != len(catalog.All()) {
		t.Errorf("categories after two runs = %d, want %d", len(mem.Categories), len(catalog.All()))
	}
}

func TestProcessRenamesLegacyGraphCategory(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	legacyID, err := mem.EnsureCategory(ctx, catalog.LegacyGraphCategory, model.FlowOperacional)
	if err != nil {
		t.Fatal(err)
	}

	c := NewCoordinator(mem, mem)
	if _, err := c.Process(ctx, testInput(habitusWorkbook())); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := mem.CategoryIDByName(ctx, catalog.LegacyGraphCategory); ok {
		t.Error("legacy graph category still present after ingestion")
	}
	newID, ok, _ := mem.CategoryIDByName(ctx, catalog.GraphCategory)
	if !ok {
		t.Fatal("renamed graph category missing")
	}
	if newID != legacyID {
		t.Errorf("rename must keep the id: got %d, want %d", newID, legacyID)
	}
}

func TestProcessUnsupportedLayout(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	c := NewCoordinator(mem, mem)

	wb := workbook.NewMemoryWorkbook().AddSheet("Sheet1", nil)
	_, err := c.Process(ctx, testInput(wb))
	if err == nil {
		t.Fatal("expected layout error")
	}
	if len(mem.Projects) != 0 || len(mem.Scenarios) != 0 || len(mem.Entries) != 0 {
		t.Error("failed ingestion must leave no project data behind")
	}

	// The attempt itself stays on record.
	if len(mem.Uploads) != 1 {
		t.Fatalf("got %d upload records, want 1", len(mem.Uploads))
	}
	for _, u := range mem.Uploads {
		if u.Status != model.UploadError {
			t.Errorf("upload status = %s, want erro", u.Status)
		}
		var rep Report
		if err := json.Unmarshal(u.Report, &rep); err != nil {
			t.Fatalf("failure report not valid JSON: %v", err)
		}
		if rep.Stage != StageFailed || rep.Error == "" {
			t.Errorf("failure report = %+v, want stage falha with error text", rep)
		}
	}
}

func TestBytesHashStable(t *testing.T) {
	a := BytesHash([]byte("planilha"))
	b := BytesHash([]byte("planilha"))
	if a != b {
		t.Errorf("hash not stable: %s vs %s", a, b)
	}
	if a == BytesHash([]byte("outra")) {
		t.Error("different content produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hex sha256 length = %d, want 64", len(a))
	}
}
