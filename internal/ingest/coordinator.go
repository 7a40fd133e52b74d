// Package ingest orchestrates the workbook-to-database pipeline: layout
// detection, parameter and series extraction, project/scenario creation and
// the derivation of the sibling scenarios, all committed in one transaction.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/catalog"
	"HabitusForecast/internal/config"
	"HabitusForecast/internal/extract"
	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/model"
	"HabitusForecast/internal/scenario"
	"HabitusForecast/internal/store"
	"HabitusForecast/internal/workbook"
)

// Stage names the pipeline checkpoints, recorded in the processing report.
type Stage string

const (
	StageReceived   Stage = "recebido"
	StageValidated  Stage = "validado"
	StageParams     Stage = "parametros_extraidos"
	StageProject    Stage = "projeto_criado"
	StageCategories Stage = "categorias_garantidas"
	StageBaseline   Stage = "baseline_populada"
	StageScenarios  Stage = "cenarios_derivados"
	StageRecorded   Stage = "registrado"
	StageDone       Stage = "concluido"
	StageFailed     Stage = "falha"
)

// DuplicateInfo flags that another upload already carried identical bytes.
// Duplicates are reported for the operator, never rejected: re-ingesting the
// same file into a fresh project is a legitimate workflow.
type DuplicateInfo struct {
	UploadID     int64  `json:"upload_id"`
	OriginalName string `json:"nome_original"`
	UploadedAt   string `json:"enviado_em"`
}

// Report is the JSON processing summary persisted with the upload record.
type Report struct {
	Stage      Stage                         `json:"etapa"`
	Layout     string                        `json:"layout,omitempty"`
	ClientName string                        `json:"nome_cliente,omitempty"`
	Provenance map[string]extract.Provenance `json:"origem_parametros,omitempty"`
	Duplicate  *DuplicateInfo                `json:"duplicado,omitempty"`

	Categories      int            `json:"categorias"`
	BaselineEntries int            `json:"lancamentos_baseline"`
	DerivedEntries  map[string]int `json:"lancamentos_derivados,omitempty"`

	Warnings []string `json:"avisos,omitempty"`
	Error    string   `json:"erro,omitempty"`
}

// Input is one upload handed to the pipeline by the HTTP layer.
type Input struct {
	UserID       int64
	OriginalName string
	StoragePath  string
	FileHash     string
	Workbook     workbook.Workbook
	Today        time.Time
}

// Result is returned on success.
type Result struct {
	ProjectID   int64
	UploadID    int64
	ScenarioIDs map[string]int64
	Report      Report
}

type Coordinator struct {
	tx    store.TxRunner
	reads store.Queries
}

// NewCoordinator wires the pipeline to a transactional store. reads is a
// pool-bound executor used for the lookups that precede the transaction.
func NewCoordinator(tx store.TxRunner, reads store.Queries) *Coordinator {
	return &Coordinator{tx: tx, reads: reads}
}

// Process runs the full pipeline for one upload. All database writes happen
// inside a single transaction, so a failure at any point leaves no partial
// project behind; the upload itself is then recorded with status "erro" in a
// best-effort follow-up write.
func (c *Coordinator) Process(ctx context.Context, in Input) (*Result, error) {
	report := Report{Stage: StageReceived}

	sig, err := layout.Detect(in.Workbook.SheetNames())
	if err != nil {
		return nil, c.fail(ctx, in, report, fmt.Errorf("layout não suportado: %w", err))
	}
	report.Stage = StageValidated
	report.Layout = sig.Variant.String()

	params := extract.ExtractParams(in.Workbook, sig.Variant, in.Today)
	indicators := extract.ExtractIndicators(in.Workbook)
	report.Stage = StageParams
	report.ClientName = params.ClientName
	report.Provenance = params.Provenance

	if dup, ok, err := c.reads.UploadByHash(ctx, in.FileHash); err != nil {
		log.Printf("[Ingest] duplicate lookup failed for %s: %v", in.OriginalName, err)
	} else if ok {
		report.Duplicate = &DuplicateInfo{
			UploadID:     dup.ID,
			OriginalName: dup.OriginalName,
			UploadedAt:   dup.UploadedAt.Format(time.RFC3339),
		}
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("arquivo idêntico ao upload #%d (%s)", dup.ID, dup.OriginalName))
	}

	cfg, found, err := c.reads.ScenarioConfigByUser(ctx, in.UserID)
	if err != nil {
		return nil, c.fail(ctx, in, report, err)
	}
	if !found {
		// Zero offsets: the derived scenarios start equal to the baseline.
		cfg = model.ScenarioConfig{}
	}

	result := &Result{ScenarioIDs: map[string]int64{}}
	err = c.tx.InTx(ctx, func(q store.Queries) error {
		projectID, err := q.CreateProject(ctx, model.Project{
			UserID:          in.UserID,
			ClientName:      params.ClientName,
			BaseDate:        params.BaseDate,
			OpeningBalance:  params.OpeningBalance,
			FreeCashFlowGen: indicators.FreeCashFlowGen,
			BreakEvenPoint:  indicators.BreakEvenPoint,
			FixedCostPct:    indicators.FixedCostPct,
		})
		if err != nil {
			return err
		}
		result.ProjectID = projectID
		report.Stage = StageProject

		categoryIDs, err := ensureCategories(ctx, q)
		if err != nil {
			return err
		}
		report.Stage = StageCategories
		report.Categories = len(categoryIDs)

		baseline, warnings, err := buildBaseline(in.Workbook, sig.Variant, categoryIDs)
		if err != nil {
			return err
		}
		report.Warnings = append(report.Warnings, warnings...)

		realistaID, err := q.CreateScenario(ctx, model.Scenario{
			ProjectID:   projectID,
			Name:        scenario.NameRealista,
			Description: fmt.Sprintf("Importado de %s", in.OriginalName),
			Active:      true,
		})
		if err != nil {
			return err
		}
		result.ScenarioIDs[scenario.NameRealista] = realistaID

		for i := range baseline {
			baseline[i].ScenarioID = realistaID
		}
		n, err := insertBatched(ctx, q, baseline)
		if err != nil {
			return err
		}
		report.Stage = StageBaseline
		report.BaselineEntries = n

		report.DerivedEntries = map[string]int{}
		for _, name := range scenario.DerivedNames {
			pct := scenario.Offset(cfg, name)
			sibID, err := q.CreateScenario(ctx, model.Scenario{
				ProjectID:   projectID,
				Name:        name,
				Description: fmt.Sprintf("Derivado do Realista (%s%%)", pct.String()),
				Active:      false,
			})
			if err != nil {
				return err
			}
			result.ScenarioIDs[name] = sibID

			derived := scenario.Derive(baseline, sibID, pct)
			dn, err := insertBatched(ctx, q, derived)
			if err != nil {
				return err
			}
			report.DerivedEntries[name] = dn
		}
		report.Stage = StageScenarios

		report.Stage = StageRecorded
		done := report
		done.Stage = StageDone
		payload, err := json.Marshal(done)
		if err != nil {
			return fmt.Errorf("failed to serialize processing report: %w", err)
		}
		uploadID, err := q.InsertUpload(ctx, model.UploadRecord{
			ProjectID:    projectID,
			OriginalName: in.OriginalName,
			StoragePath:  in.StoragePath,
			FileHash:     in.FileHash,
			Status:       model.UploadProcessed,
			Report:       payload,
		})
		if err != nil {
			return err
		}
		result.UploadID = uploadID
		return nil
	})
	if err != nil {
		return nil, c.fail(ctx, in, report, err)
	}

	report.Stage = StageDone
	result.Report = report
	log.Printf("[Ingest] processed %s: project=%d entries=%d layout=%s",
		in.OriginalName, result.ProjectID, report.BaselineEntries, report.Layout)
	return result, nil
}

// fail records the broken upload outside the rolled-back transaction so the
// attempt stays visible, then returns the original error.
func (c *Coordinator) fail(ctx context.Context, in Input, report Report, cause error) error {
	report.Stage = StageFailed
	report.Error = cause.Error()
	payload, merr := json.Marshal(report)
	if merr != nil {
		payload = []byte(`{"etapa":"falha"}`)
	}
	if _, err := c.reads.InsertUpload(ctx, model.UploadRecord{
		OriginalName: in.OriginalName,
		StoragePath:  in.StoragePath,
		FileHash:     in.FileHash,
		Status:       model.UploadError,
		Report:       payload,
	}); err != nil {
		log.Printf("[Ingest] failed to record broken upload %s: %v", in.OriginalName, err)
	}
	return cause
}

// ensureCategories migrates the legacy synthetic chart category and then
// guarantees every canonical category exists, returning name -> id.
func ensureCategories(ctx context.Context, q store.Queries) (map[string]int64, error) {
	if err := q.RenameCategory(ctx, catalog.LegacyGraphCategory, catalog.GraphCategory); err != nil {
		return nil, err
	}
	ids := make(map[string]int64)
	for _, cat := range catalog.All() {
		id, err := q.EnsureCategory(ctx, cat.Name, cat.Flow)
		if err != nil {
			return nil, err
		}
		ids[cat.Name] = id
	}
	return ids, nil
}

// buildBaseline extracts every series of the workbook and materializes the
// Realista entry set (scenario id is filled in by the caller). Amounts are
// stored as magnitudes; the sign lives in the direction tag.
func buildBaseline(wb workbook.Workbook, variant layout.Variant, categoryIDs map[string]int64) ([]model.Entry, []string, error) {
	months := extract.ForecastMonths()
	var entries []model.Entry
	var warnings []string

	series, err := extract.CategorySeriesFor(wb, variant, months)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range series {
		catID, ok := categoryIDs[s.Mapping.Name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("categoria %s sem id, série ignorada", s.Mapping.Name))
			continue
		}
		for _, p := range s.Points {
			entries = append(entries, model.Entry{
				CategoryID:     catID,
				CompetenceDate: p.Date,
				Amount:         p.Value.Abs(),
				Direction:      s.Mapping.Direction,
				Source:         model.SourceProjetado,
			})
		}
	}

	if graph := extract.GraphBaseline(wb, variant, months); len(graph) > 0 {
		catID := categoryIDs[catalog.GraphCategory]
		for _, p := range graph {
			entries = append(entries, model.Entry{
				CategoryID:     catID,
				CompetenceDate: p.Date,
				Amount:         p.Value.Abs(),
				Direction:      graphDirection(p.Value),
				Source:         model.SourceProjetado,
			})
		}
	} else {
		warnings = append(warnings, "nenhuma série de gráfico extraída")
	}

	if realized := extract.RealizedSeries(wb, variant, months); len(realized) > 0 {
		catID := categoryIDs[catalog.RealizedCategory]
		for _, p := range realized {
			entries = append(entries, model.Entry{
				CategoryID:     catID,
				CompetenceDate: p.Date,
				Amount:         p.Value.Abs(),
				Direction:      graphDirection(p.Value),
				Source:         model.SourceRealizado,
			})
		}
	}
	return entries, warnings, nil
}

// graphDirection tags composed series values, which may legitimately be
// negative months.
func graphDirection(v decimal.Decimal) model.Direction {
	if v.IsNegative() {
		return model.DirectionSaida
	}
	return model.DirectionEntrada
}

func insertBatched(ctx context.Context, q store.Queries, entries []model.Entry) (int, error) {
	total := 0
	for start := 0; start < len(entries); start += config.EntryCopyBatchSize {
		end := start + config.EntryCopyBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		n, err := q.InsertEntries(ctx, entries[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
