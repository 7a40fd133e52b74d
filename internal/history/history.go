// Package history implements scenario versioning: immutable JSON snapshots
// of a scenario's entry set, and point-in-time restore with an automatic
// safety backup.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/config"
	"HabitusForecast/internal/model"
	"HabitusForecast/internal/store"
)

// ErrScenarioNotEditable is returned when a restore targets a scenario that
// is not the active one. Inactive scenarios are frozen.
var ErrScenarioNotEditable = errors.New("cenário não está ativo para edição")

// ErrSnapshotMismatch is returned when the requested version belongs to a
// different scenario than the one being restored.
var ErrSnapshotMismatch = errors.New("versão não pertence a este cenário")

// PayloadEntry is one serialized entry. Categories are stored by name, not
// id, so snapshots survive category table churn; restore re-resolves names.
type PayloadEntry struct {
	Categoria       string          `json:"categoria"`
	DataCompetencia string          `json:"data_competencia"`
	Valor           decimal.Decimal `json:"valor"`
	Tipo            model.Direction `json:"tipo"`
	Origem          model.Source    `json:"origem"`
}

type ScenarioMeta struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	IsActive  bool   `json:"is_active"`
}

type Totals struct {
	Entradas   decimal.Decimal `json:"entradas"`
	Saidas     decimal.Decimal `json:"saidas"`
	Liquido    decimal.Decimal `json:"liquido"`
	Quantidade int             `json:"quantidade"`
}

// Payload is the complete snapshot document stored in snapshot_data.
type Payload struct {
	Cenario     ScenarioMeta   `json:"cenario"`
	Lancamentos []PayloadEntry `json:"lancamentos"`
	Totais      Totals         `json:"totais"`
}

// RestoreResult summarizes one completed restore.
type RestoreResult struct {
	EntriesRestored   int
	SkippedCategories []string
	BackupSnapshotID  int64
}

type Manager struct {
	tx    store.TxRunner
	reads store.Queries
}

func NewManager(tx store.TxRunner, reads store.Queries) *Manager {
	return &Manager{tx: tx, reads: reads}
}

// CreateSnapshot captures the scenario's current entry set as a new
// immutable version. Snapshots can be taken of any scenario, active or not.
func (m *Manager) CreateSnapshot(ctx context.Context, scenarioID, userID int64, description string) (int64, error) {
	var snapshotID int64
	err := m.tx.InTx(ctx, func(q store.Queries) error {
		sc, err := q.ScenarioByID(ctx, scenarioID)
		if err != nil {
			return err
		}
		payload, err := buildPayload(ctx, q, sc)
		if err != nil {
			return err
		}
		snapshotID, err = q.InsertSnapshot(ctx, model.HistorySnapshot{
			ScenarioID:  scenarioID,
			UserID:      userID,
			Description: description,
			Payload:     payload,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return snapshotID, nil
}

// ListSnapshots returns the scenario's versions, newest first.
func (m *Manager) ListSnapshots(ctx context.Context, scenarioID int64) ([]model.HistorySnapshot, error) {
	return m.reads.SnapshotsByScenario(ctx, scenarioID)
}

// Restore replaces the live entry set of an active scenario with the one
// saved in the given version. The pre-restore state is backed up first, the
// whole swap runs in one transaction, and entries whose category no longer
// exists are skipped and reported rather than failing the restore.
func (m *Manager) Restore(ctx context.Context, scenarioID, versionID, userID int64) (RestoreResult, error) {
	var result RestoreResult
	err := m.tx.InTx(ctx, func(q store.Queries) error {
		sc, err := q.ScenarioByID(ctx, scenarioID)
		if err != nil {
			return err
		}
		if !sc.Active {
			return ErrScenarioNotEditable
		}

		snap, err := q.SnapshotByID(ctx, versionID)
		if err != nil {
			return err
		}
		if snap.ScenarioID != scenarioID {
			return ErrSnapshotMismatch
		}
		var saved Payload
		if err := json.Unmarshal(snap.Payload, &saved); err != nil {
			return fmt.Errorf("snapshot %d ilegível: %w", versionID, err)
		}

		backup, err := buildPayload(ctx, q, sc)
		if err != nil {
			return err
		}
		backupID, err := q.InsertSnapshot(ctx, model.HistorySnapshot{
			ScenarioID: scenarioID,
			UserID:     userID,
			Description: fmt.Sprintf("Backup automático antes de restaurar versão de %s",
				snap.CreatedAt.Format("02/01/2006 15:04")),
			Payload: backup,
		})
		if err != nil {
			return err
		}
		result.BackupSnapshotID = backupID

		if _, err := q.DeleteEntriesByScenario(ctx, scenarioID); err != nil {
			return err
		}

		var entries []model.Entry
		skipped := map[string]bool{}
		for _, pe := range saved.Lancamentos {
			catID, ok, err := q.CategoryIDByName(ctx, pe.Categoria)
			if err != nil {
				return err
			}
			if !ok {
				skipped[pe.Categoria] = true
				continue
			}
			date, err := time.Parse(config.DateFormat, pe.DataCompetencia)
			if err != nil {
				return fmt.Errorf("data inválida no snapshot %d: %w", versionID, err)
			}
			entries = append(entries, model.Entry{
				ScenarioID:     scenarioID,
				CategoryID:     catID,
				CompetenceDate: date,
				Amount:         pe.Valor,
				Direction:      pe.Tipo,
				Source:         pe.Origem,
			})
		}
		n, err := q.InsertEntries(ctx, entries)
		if err != nil {
			return err
		}
		result.EntriesRestored = n
		for name := range skipped {
			result.SkippedCategories = append(result.SkippedCategories, name)
		}

		return q.UpdateScenarioMeta(ctx, scenarioID, saved.Cenario.Nome, saved.Cenario.Descricao)
	})
	if err != nil {
		return RestoreResult{}, err
	}
	if len(result.SkippedCategories) > 0 {
		log.Printf("[History] restore of scenario %d skipped categories: %v",
			scenarioID, result.SkippedCategories)
	}
	return result, nil
}

// buildPayload serializes the scenario's current state.
func buildPayload(ctx context.Context, q store.Queries, sc model.Scenario) ([]byte, error) {
	entries, err := q.EntriesByScenario(ctx, sc.ID)
	if err != nil {
		return nil, err
	}

	p := Payload{
		Cenario: ScenarioMeta{Nome: sc.Name, Descricao: sc.Description, IsActive: sc.Active},
	}
	p.Totais.Entradas = decimal.Zero
	p.Totais.Saidas = decimal.Zero
	for _, e := range entries {
		p.Lancamentos = append(p.Lancamentos, PayloadEntry{
			Categoria:       e.CategoryName,
			DataCompetencia: e.CompetenceDate.Format(config.DateFormat),
			Valor:           e.Amount,
			Tipo:            e.Direction,
			Origem:          e.Source,
		})
		if e.Direction == model.DirectionEntrada {
			p.Totais.Entradas = p.Totais.Entradas.Add(e.Amount)
		} else {
			p.Totais.Saidas = p.Totais.Saidas.Add(e.Amount)
		}
	}
	p.Totais.Liquido = p.Totais.Entradas.Sub(p.Totais.Saidas)
	p.Totais.Quantidade = len(p.Lancamentos)

	out, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot payload: %w", err)
	}
	return out, nil
}
