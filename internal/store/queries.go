package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"HabitusForecast/internal/model"
)

type queries struct {
	db DB
}

func (q *queries) CreateProject(ctx context.Context, p model.Project) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO projetos
			(usuario_id, nome_cliente, data_base_estudo, saldo_inicial_caixa,
			 geracao_fdc_livre, ponto_equilibrio, percentual_custo_fixo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.UserID, p.ClientName, p.BaseDate, p.OpeningBalance,
		p.FreeCashFlowGen, p.BreakEvenPoint, p.FixedCostPct).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert project: %w", err)
	}
	return id, nil
}

func (q *queries) CreateScenario(ctx context.Context, s model.Scenario) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO cenarios (projeto_id, nome, descricao, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, s.ProjectID, s.Name, s.Description, s.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scenario: %w", err)
	}
	return id, nil
}

func (q *queries) ScenarioByID(ctx context.Context, id int64) (model.Scenario, error) {
	var s model.Scenario
	err := q.db.QueryRow(ctx, `
		SELECT id, projeto_id, nome, COALESCE(descricao, ''), is_active
		FROM cenarios WHERE id = $1
	`, id).Scan(&s.ID, &s.ProjectID, &s.Name, &s.Description, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Scenario{}, fmt.Errorf("scenario %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Scenario{}, fmt.Errorf("failed to read scenario %d: %w", id, err)
	}
	return s, nil
}

func (q *queries) UpdateScenarioMeta(ctx context.Context, id int64, name, description string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE cenarios SET nome = $2, descricao = $3 WHERE id = $1
	`, id, name, description)
	if err != nil {
		return fmt.Errorf("failed to update scenario %d: %w", id, err)
	}
	return nil
}

// EnsureCategory is the race-safe lazy create: the unique constraint on
// nome absorbs concurrent inserts and the re-read resolves the winner.
func (q *queries) EnsureCategory(ctx context.Context, name string, flow model.FlowType) (int64, error) {
	_, err := q.db.Exec(ctx, `
		INSERT INTO categorias_financeiras (nome, tipo_fluxo)
		VALUES ($1, $2)
		ON CONFLICT (nome) DO NOTHING
	`, name, flow)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure category %q: %w", name, err)
	}
	id, ok, err := q.CategoryIDByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("category %q missing after ensure", name)
	}
	return id, nil
}

func (q *queries) CategoryIDByName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		SELECT id FROM categorias_financeiras WHERE nome = $1
	`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	return id, true, nil
}

// RenameCategory is the one-time migration path for the legacy synthetic
// graph category. A no-op when the old name is absent or the new one
// already exists.
func (q *queries) RenameCategory(ctx context.Context, oldName, newName string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE categorias_financeiras SET nome = $2
		WHERE nome = $1
		  AND NOT EXISTS (SELECT 1 FROM categorias_financeiras WHERE nome = $2)
	`, oldName, newName)
	if err != nil {
		return fmt.Errorf("failed to rename category %q: %w", oldName, err)
	}
	return nil
}

type copyFromer interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var entryColumns = []string{"cenario_id", "categoria_id", "data_competencia", "valor", "tipo", "origem"}

func (q *queries) InsertEntries(ctx context.Context, entries []model.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if cf, ok := q.db.(copyFromer); ok {
		rows := make([][]interface{}, len(entries))
		for i, e := range entries {
			rows[i] = []interface{}{e.ScenarioID, e.CategoryID, e.CompetenceDate, e.Amount, string(e.Direction), string(e.Source)}
		}
		n, err := cf.CopyFrom(ctx, pgx.Identifier{"lancamentos_financeiros"}, entryColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("failed to bulk insert entries: %w", err)
		}
		return int(n), nil
	}
	for _, e := range entries {
		_, err := q.db.Exec(ctx, `
			INSERT INTO lancamentos_financeiros
				(cenario_id, categoria_id, data_competencia, valor, tipo, origem)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ScenarioID, e.CategoryID, e.CompetenceDate, e.Amount, string(e.Direction), string(e.Source))
		if err != nil {
			return 0, fmt.Errorf("failed to insert entry: %w", err)
		}
	}
	return len(entries), nil
}

func (q *queries) DeleteEntriesByScenario(ctx context.Context, scenarioID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM lancamentos_financeiros WHERE cenario_id = $1
	`, scenarioID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries of scenario %d: %w", scenarioID, err)
	}
	return tag.RowsAffected(), nil
}

func (q *queries) EntriesByScenario(ctx context.Context, scenarioID int64) ([]model.EntryWithCategory, error) {
	rows, err := q.db.Query(ctx, `
		SELECT l.id, l.cenario_id, l.categoria_id, l.data_competencia,
		       l.valor, l.tipo, l.origem, c.nome
		FROM lancamentos_financeiros l
		JOIN categorias_financeiras c ON c.id = l.categoria_id
		WHERE l.cenario_id = $1
		ORDER BY l.data_competencia, l.id
	`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries of scenario %d: %w", scenarioID, err)
	}
	defer rows.Close()

	var out []model.EntryWithCategory
	for rows.Next() {
		var e model.EntryWithCategory
		var direction, source string
		if err := rows.Scan(&e.ID, &e.ScenarioID, &e.CategoryID, &e.CompetenceDate,
			&e.Amount, &direction, &source, &e.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Direction = model.Direction(direction)
		e.Source = model.Source(source)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *queries) InsertUpload(ctx context.Context, u model.UploadRecord) (int64, error) {
	// projeto_id is nullable: a failed ingestion records its upload without
	// any project to attach it to.
	var projectID any
	if u.ProjectID != 0 {
		projectID = u.ProjectID
	}
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO arquivos_upload
			(projeto_id, nome_original, caminho_storage, hash_arquivo,
			 status_processamento, relatorio_processamento)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, projectID, u.OriginalName, u.StoragePath, u.FileHash, u.Status, u.Report).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert upload record: %w", err)
	}
	return id, nil
}

func (q *queries) UploadByHash(ctx context.Context, hash string) (model.UploadRecord, bool, error) {
	var u model.UploadRecord
	err := q.db.QueryRow(ctx, `
		SELECT id, projeto_id, nome_original, caminho_storage, hash_arquivo,
		       status_processamento, COALESCE(relatorio_processamento, '{}'), uploaded_at
		FROM arquivos_upload
		WHERE hash_arquivo = $1
		ORDER BY uploaded_at
		LIMIT 1
	`, hash).Scan(&u.ID, &u.ProjectID, &u.OriginalName, &u.StoragePath, &u.FileHash,
		&u.Status, &u.Report, &u.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UploadRecord{}, false, nil
	}
	if err != nil {
		return model.UploadRecord{}, false, fmt.Errorf("failed to look up upload by hash: %w", err)
	}
	return u, true, nil
}

func (q *queries) ScenarioConfigByUser(ctx context.Context, userID int64) (model.ScenarioConfig, bool, error) {
	var cfg model.ScenarioConfig
	err := q.db.QueryRow(ctx, `
		SELECT pessimista, realista, otimista, agressivo
		FROM configuracoes_cenarios WHERE usuario_id = $1
	`, userID).Scan(&cfg.Pessimista, &cfg.Realista, &cfg.Otimista, &cfg.Agressivo)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ScenarioConfig{}, false, nil
	}
	if err != nil {
		return model.ScenarioConfig{}, false, fmt.Errorf("failed to read scenario config: %w", err)
	}
	return cfg, true, nil
}

func (q *queries) SaveScenarioConfig(ctx context.Context, userID int64, cfg model.ScenarioConfig) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO configuracoes_cenarios (usuario_id, pessimista, realista, otimista, agressivo)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (usuario_id) DO UPDATE SET
			pessimista = EXCLUDED.pessimista,
			realista   = EXCLUDED.realista,
			otimista   = EXCLUDED.otimista,
			agressivo  = EXCLUDED.agressivo,
			updated_at = now()
	`, userID, cfg.Pessimista, cfg.Realista, cfg.Otimista, cfg.Agressivo)
	if err != nil {
		return fmt.Errorf("failed to save scenario config: %w", err)
	}
	return nil
}

func (q *queries) InsertSnapshot(ctx context.Context, s model.HistorySnapshot) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO historico_cenarios (cenario_id, usuario_id, descricao, snapshot_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, s.ScenarioID, s.UserID, s.Description, s.Payload).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return id, nil
}

func (q *queries) SnapshotByID(ctx context.Context, id int64) (model.HistorySnapshot, error) {
	var s model.HistorySnapshot
	err := q.db.QueryRow(ctx, `
		SELECT id, cenario_id, usuario_id, COALESCE(descricao, ''), snapshot_data, created_at
		FROM historico_cenarios WHERE id = $1
	`, id).Scan(&s.ID, &s.ScenarioID, &s.UserID, &s.Description, &s.Payload, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.HistorySnapshot{}, fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.HistorySnapshot{}, fmt.Errorf("failed to read snapshot %d: %w", id, err)
	}
	return s, nil
}

func (q *queries) SnapshotsByScenario(ctx context.Context, scenarioID int64) ([]model.HistorySnapshot, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, cenario_id, usuario_id, COALESCE(descricao, ''), snapshot_data, created_at
		FROM historico_cenarios
		WHERE cenario_id = $1
		ORDER BY created_at DESC, id DESC
	`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of scenario %d: %w", scenarioID, err)
	}
	defer rows.Close()

	var out []model.HistorySnapshot
	for rows.Next() {
		var s model.HistorySnapshot
		if err := rows.Scan(&s.ID, &s.ScenarioID, &s.UserID, &s.Description, &s.Payload, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
