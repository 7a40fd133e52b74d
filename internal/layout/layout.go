// Package layout decides which spreadsheet schema variant an uploaded
// workbook follows, based solely on the set of sheet names it carries.
package layout

import (
	"fmt"
	"strings"
)

type Variant int

const (
	// VariantProfecia is the legacy layout: a Painel Controle header sheet,
	// the PROFECIA flow sheet and a VENDAS revenue sheet.
	VariantProfecia Variant = iota
	// VariantHabitus is the current layout built around the FDC-REAL sheet,
	// with optional VENDAS/INVESTIMENTOS/FINANCIAMENTOS/DESPESAS sheets.
	VariantHabitus
)

func (v Variant) String() string {
	switch v {
	case VariantProfecia:
		return "PROFECIA"
	case VariantHabitus:
		return "HABITUS_FORECA$T"
	}
	return "UNKNOWN"
}

// Sheet names shared by the extractors.
const (
	SheetControlPanel = "Painel Controle"
	SheetProfecia     = "PROFECIA"
	SheetVendas       = "VENDAS"
	SheetFDCReal      = "FDC-REAL"
	SheetInvestments  = "INVESTIMENTOS"
	SheetFinancing    = "FINANCIAMENTOS"
	SheetExpenses     = "DESPESAS"
	SheetIndicators   = "INDICADORES"
)

type Signature struct {
	Variant  Variant
	Required []string
}

// signatures are checked in declared order. The legacy signature comes
// first: a legacy workbook may also carry an FDC-REAL sheet, which would
// otherwise satisfy the Habitus signature and shadow the stricter match.
var signatures = []Signature{
	{Variant: VariantProfecia, Required: []string{SheetControlPanel, SheetProfecia, SheetVendas}},
	{Variant: VariantHabitus, Required: []string{SheetFDCReal}},
}

// UnsupportedLayoutError carries the observed sheet names for diagnostics.
type UnsupportedLayoutError struct {
	Observed []string
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("no supported layout matches sheets [%s]", strings.Join(e.Observed, ", "))
}

// Detect returns the first signature whose required sheets are all present.
func Detect(sheetNames []string) (Signature, error) {
	present := make(map[string]bool, len(sheetNames))
	for _, n := range sheetNames {
		present[n] = true
	}
	for _, sig := range signatures {
		ok := true
		for _, req := range sig.Required {
			if !present[req] {
				ok = false
				break
			}
		}
		if ok {
			return sig, nil
		}
	}
	return Signature{}, &UnsupportedLayoutError{Observed: append([]string(nil), sheetNames...)}
}

// HasSheet reports whether the workbook lists the sheet, matching the
// name case-insensitively (uploads are inconsistent about casing).
func HasSheet(sheetNames []string, name string) (string, bool) {
	for _, n := range sheetNames {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
