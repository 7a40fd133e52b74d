// Package workbook is the tabular reader consumed by the extraction
// pipeline. It presents any supported spreadsheet as a set of named sheets,
// each a grid of typed cells, so extractors never touch file formats.
package workbook

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellString
	CellDate
)

type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
	Date   time.Time
}

func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// Grid is a 0-indexed 2-D view of one sheet. Reads outside the populated
// area return an empty cell instead of failing.
type Grid struct {
	rows [][]Cell
}

func NewGrid(rows [][]Cell) *Grid { return &Grid{rows: rows} }

func (g *Grid) NumRows() int { return len(g.rows) }

func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.rows) {
		return Cell{}
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Workbook lists its sheets and materializes one sheet at a time.
type Workbook interface {
	SheetNames() []string
	Sheet(name string) (*Grid, error)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01-02-06",
}

// classify turns the raw string a reader produced into a typed cell.
// Numbers may arrive with either decimal separator.
func classify(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{}
	}
	if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return Cell{Kind: CellNumber, Number: n, Text: s}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Cell{Kind: CellDate, Date: t, Text: s}
		}
	}
	return Cell{Kind: CellString, Text: s}
}

func gridFromStrings(rows [][]string) *Grid {
	out := make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, raw := range row {
			cells[j] = classify(raw)
		}
		out[i] = cells
	}
	return NewGrid(out)
}
