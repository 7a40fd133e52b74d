package workbook

import (
	"fmt"
	"time"
)

// MemoryWorkbook is an in-memory Workbook used by tests and previews.
// Sheets keep insertion order, matching how readers list them.
type MemoryWorkbook struct {
	names  []string
	sheets map[string]*Grid
}

func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{sheets: make(map[string]*Grid)}
}

// AddSheet builds a sheet from loosely-typed rows: nil means empty,
// numeric values become number cells, time.Time becomes a date cell and
// everything else is stringified.
func (m *MemoryWorkbook) AddSheet(name string, rows [][]interface{}) *MemoryWorkbook {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cr := make([]Cell, len(row))
		for j, v := range row {
			cr[j] = cellOf(v)
		}
		cells[i] = cr
	}
	if _, exists := m.sheets[name]; !exists {
		m.names = append(m.names, name)
	}
	m.sheets[name] = NewGrid(cells)
	return m
}

func (m *MemoryWorkbook) SheetNames() []string { return m.names }

func (m *MemoryWorkbook) Sheet(name string) (*Grid, error) {
	g, ok := m.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	return g, nil
}

func cellOf(v interface{}) Cell {
	switch t := v.(type) {
	case nil:
		return Cell{}
	case float64:
		return Cell{Kind: CellNumber, Number: t}
	case int:
		return Cell{Kind: CellNumber, Number: float64(t)}
	case time.Time:
		return Cell{Kind: CellDate, Date: t}
	case string:
		return classify(t)
	default:
		return classify(fmt.Sprint(t))
	}
}
