// Package store is the persistence layer. The engine packages consume the
// Queries/TxRunner interfaces only; the pgx implementation lives here and
// an in-memory one in storetest, so the core never depends on a live
// database.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"HabitusForecast/internal/model"
)

// ErrNotFound is returned by single-row lookups when the row does not
// exist, so callers can branch with errors.Is instead of matching text.
var ErrNotFound = errors.New("not found")

// DB is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query code
// runs inside and outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the full persistence surface the engine consumes.
type Queries interface {
	CreateProject(ctx context.Context, p model.Project) (int64, error)

	CreateScenario(ctx context.Context, s model.Scenario) (int64, error)
	ScenarioByID(ctx context.Context, id int64) (model.Scenario, error)
	UpdateScenarioMeta(ctx context.Context, id int64, name, description string) error

	EnsureCategory(ctx context.Context, name string, flow model.FlowType) (int64, error)
	CategoryIDByName(ctx context.Context, name string) (int64, bool, error)
	RenameCategory(ctx context.Context, oldName, newName string) error

	InsertEntries(ctx context.Context, entries []model.Entry) (int, error)
	DeleteEntriesByScenario(ctx context.Context, scenarioID int64) (int64, error)
	EntriesByScenario(ctx context.Context, scenarioID int64) ([]model.EntryWithCategory, error)

	InsertUpload(ctx context.Context, u model.UploadRecord) (int64, error)
	UploadByHash(ctx context.Context, hash string) (model.UploadRecord, bool, error)

	ScenarioConfigByUser(ctx context.Context, userID int64) (model.ScenarioConfig, bool, error)
	SaveScenarioConfig(ctx context.Context, userID int64, cfg model.ScenarioConfig) error

	InsertSnapshot(ctx context.Context, s model.HistorySnapshot) (int64, error)
	SnapshotByID(ctx context.Context, id int64) (model.HistorySnapshot, error)
	SnapshotsByScenario(ctx context.Context, scenarioID int64) ([]model.HistorySnapshot, error)
}

// TxRunner runs a unit of work in one atomic transaction: the callback's
// error rolls everything back, nil commits.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q Queries) error) error
}

// Store is the Postgres implementation.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Queries returns an executor bound to the pool, for reads that do not
// need transaction scope.
func (s *Store) Queries() Queries {
	return &queries{db: s.pool}
}

func (s *Store) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
