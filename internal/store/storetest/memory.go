// Package storetest provides an in-memory store.Queries/store.TxRunner
// implementation for engine tests. InTx snapshots the whole state up
// front and restores it when the callback errors, mirroring the rollback
// guarantee the Postgres store gets from its transaction.
package storetest

import (
	"context"
	"fmt"
	"time"

	"HabitusForecast/internal/model"
	"HabitusForecast/internal/store"
)

type Memory struct {
	Projects   map[int64]model.Project
	Scenarios  map[int64]model.Scenario
	Categories map[int64]model.Category
	Entries    map[int64]model.Entry
	Uploads    map[int64]model.UploadRecord
	Snapshots  map[int64]model.HistorySnapshot
	Configs    map[int64]model.ScenarioConfig

	nextID int64
	clock  time.Time
}

var _ store.Queries = (*Memory)(nil)
var _ store.TxRunner = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		Projects:   map[int64]model.Project{},
		Scenarios:  map[int64]model.Scenario{},
		Categories: map[int64]model.Category{},
		Entries:    map[int64]model.Entry{},
		Uploads:    map[int64]model.UploadRecord{},
		Snapshots:  map[int64]model.HistorySnapshot{},
		Configs:    map[int64]model.ScenarioConfig{},
		clock:      time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// tick keeps created_at values strictly increasing so newest-first
// ordering is deterministic.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *Memory) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	saved := m.snapshotState()
	if err := fn(m); err != nil {
		m.restoreState(saved)
		return err
	}
	return nil
}

type state struct {
	projects   map[int64]model.Project
	scenarios  map[int64]model.Scenario
	categories map[int64]model.Category
	entries    map[int64]model.Entry
	uploads    map[int64]model.UploadRecord
	snapshots  map[int64]model.HistorySnapshot
	configs    map[int64]model.ScenarioConfig
	nextID     int64
}

func (m *Memory) snapshotState() state {
	return state{
		projects:   copyMap(m.Projects),
		scenarios:  copyMap(m.Scenarios),
		categories: copyMap(m.Categories),
		entries:    copyMap(m.Entries),
		uploads:    copyMap(m.Uploads),
		snapshots:  copyMap(m.Snapshots),
		configs:    copyMap(m.Configs),
		nextID:     m.nextID,
	}
}

func (m *Memory) restoreState(s state) {
	m.Projects = s.projects
	m.Scenarios = s.scenarios
	m.Categories = s.categories
	m.Entries = s.entries
	m.Uploads = s.uploads
	m.Snapshots = s.snapshots
	m.Configs = s.configs
	m.nextID = s.nextID
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *Memory) CreateProject(ctx context.Context, p model.Project) (int64, error) {
	p.ID = m.id()
	m.Projects[p.ID] = p
	return p.ID, nil
}

func (m *Memory) CreateScenario(ctx context.Context, s model.Scenario) (int64, error) {
	s.ID = m.id()
	m.Scenarios[s.ID] = s
	return s.ID, nil
}

func (m *Memory) ScenarioByID(ctx context.Context, id int64) (model.Scenario, error) {
	s, ok := m.Scenarios[id]
	if !ok {
		return model.Scenario{}, fmt.Errorf("scenario %d: %w", id, store.ErrNotFound)
	}
	return s, nil
}

func (m *Memory) UpdateScenarioMeta(ctx context.Context, id int64, name, description string) error {
	s, ok := m.Scenarios[id]
	if !ok {
		return fmt.Errorf("scenario %d: %w", id, store.ErrNotFound)
	}
	s.Name = name
	s.Description = description
	m.Scenarios[id] = s
	return nil
}

func (m *Memory) EnsureCategory(ctx context.Context, name string, flow model.FlowType) (int64, error) {
	if id, ok, _ := m.CategoryIDByName(ctx, name); ok {
		return id, nil
	}
	c := model.Category{ID: m.id(), Name: name, Flow: flow}
	m.Categories[c.ID] = c
	return c.ID, nil
}

func (m *Memory) CategoryIDByName(ctx context.Context, name string) (int64, bool, error) {
	for id, c := range m.Categories {
		if c.Name == name {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (m *Memory) RenameCategory(ctx context.Context, oldName, newName string) error {
	if _, exists, _ := m.CategoryIDByName(ctx, newName); exists {
		return nil
	}
	for id, c := range m.Categories {
		if c.Name == oldName {
			c.Name = newName
			m.Categories[id] = c
			return nil
		}
	}
	return nil
}

func (m *Memory) InsertEntries(ctx context.Context, entries []model.Entry) (int, error) {
	for _, e := range entries {
		e.ID = m.id()
		m.Entries[e.ID] = e
	}
	return len(entries), nil
}

func (m *Memory) DeleteEntriesByScenario(ctx context.Context, scenarioID int64) (int64, error) {
	var n int64
	for id, e := range m.Entries {
		if e.ScenarioID == scenarioID {
			delete(m.Entries, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) EntriesByScenario(ctx context.Context, scenarioID int64) ([]model.EntryWithCategory, error) {
	var out []model.EntryWithCategory
	for _, e := range m.Entries {
		if e.ScenarioID != scenarioID {
			continue
		}
		cat := m.Categories[e.CategoryID]
		out = append(out, model.EntryWithCategory{Entry: e, CategoryName: cat.Name})
	}
	// Stable order: by date then id, like the SQL query.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.CompetenceDate.Before(a.CompetenceDate) ||
				(b.CompetenceDate.Equal(a.CompetenceDate) && b.ID < a.ID) {
				out[j-1], out[j] = b, a
			}
		}
	}
	return out, nil
}

func (m *Memory) InsertUpload(ctx context.Context, u model.UploadRecord) (int64, error) {
	u.ID = m.id()
	u.UploadedAt = m.tick()
	m.Uploads[u.ID] = u
	return u.ID, nil
}

func (m *Memory) UploadByHash(ctx context.Context, hash string) (model.UploadRecord, bool, error) {
	var found model.UploadRecord
	ok := false
	for _, u := range m.Uploads {
		if u.FileHash != hash {
			continue
		}
		if !ok || u.UploadedAt.Before(found.UploadedAt) {
			found = u
			ok = true
		}
	}
	return found, ok, nil
}

func (m *Memory) ScenarioConfigByUser(ctx context.Context, userID int64) (model.ScenarioConfig, bool, error) {
	cfg, ok := m.Configs[userID]
	return cfg, ok, nil
}

func (m *Memory) SaveScenarioConfig(ctx context.Context, userID int64, cfg model.ScenarioConfig) error {
	m.Configs[userID] = cfg
	return nil
}

func (m *Memory) InsertSnapshot(ctx context.Context, s model.HistorySnapshot) (int64, error) {
	s.ID = m.id()
	s.CreatedAt = m.tick()
	m.Snapshots[s.ID] = s
	return s.ID, nil
}

func (m *Memory) SnapshotByID(ctx context.Context, id int64) (model.HistorySnapshot, error) {
	s, ok := m.Snapshots[id]
	if !ok {
		return model.HistorySnapshot{}, fmt.Errorf("snapshot %d: %w", id, store.ErrNotFound)
	}
	return s, nil
}

func (m *Memory) SnapshotsByScenario(ctx context.Context, scenarioID int64) ([]model.HistorySnapshot, error) {
	var out []model.HistorySnapshot
	for _, s := range m.Snapshots {
		if s.ScenarioID == scenarioID {
			out = append(out, s)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			if out[j].CreatedAt.After(out[j-1].CreatedAt) {
				out[j-1], out[j] = out[j], out[j-1]
			}
		}
	}
	return out, nil
}
