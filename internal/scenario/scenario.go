// Package scenario implements the four canonical forecast scenarios and
// the percentage-based derivation of the three siblings from the Realista
// baseline.
package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"HabitusForecast/internal/model"
)

// Canonical scenario names. Realista is the zero-point baseline.
const (
	NameRealista   = "Realista"
	NamePessimista = "Pessimista"
	NameOtimista   = "Otimista"
	NameAgressivo  = "Agressivo"
)

// DerivedNames lists the sibling scenarios in creation order.
var DerivedNames = []string{NamePessimista, NameOtimista, NameAgressivo}

var hundred = decimal.NewFromInt(100)

// ValidateConfig enforces the settings-layer ordering rules: Realista is
// the fixed zero point, Pessimista varies below it, Otimista and Agressivo
// above it, with Otimista never beyond Agressivo.
func ValidateConfig(cfg model.ScenarioConfig) error {
	for name, v := range map[string]decimal.Decimal{
		"pessimista": cfg.Pessimista,
		"realista":   cfg.Realista,
		"otimista":   cfg.Otimista,
		"agressivo":  cfg.Agressivo,
	} {
		if v.Abs().Cmp(hundred) > 0 {
			return fmt.Errorf("campo %s deve ser um número entre -100 e 100", name)
		}
	}
	if cfg.Pessimista.IsPositive() {
		return fmt.Errorf("pessimista deve ser negativo ou zero")
	}
	if !cfg.Realista.IsZero() {
		return fmt.Errorf("realista deve ser sempre 0 (ponto zero)")
	}
	if cfg.Otimista.IsNegative() {
		return fmt.Errorf("otimista deve ser positivo ou zero")
	}
	if cfg.Agressivo.IsNegative() {
		return fmt.Errorf("agressivo deve ser positivo ou zero")
	}
	if cfg.Otimista.Cmp(cfg.Agressivo) > 0 {
		return fmt.Errorf("otimista não pode ser maior que agressivo")
	}
	return nil
}

// Offset returns the percentage offset for a canonical scenario name.
func Offset(cfg model.ScenarioConfig, name string) decimal.Decimal {
	switch name {
	case NamePessimista:
		return cfg.Pessimista
	case NameOtimista:
		return cfg.Otimista
	case NameAgressivo:
		return cfg.Agressivo
	}
	return decimal.Zero
}

// Derive produces the entry set of one sibling scenario from the baseline.
// Projected inflows are scaled by (1 + pct/100); outflows keep their
// magnitude, and realized entries are always copied unchanged because they
// are historical fact shared by every scenario of the project.
func Derive(baseline []model.Entry, scenarioID int64, pct decimal.Decimal) []model.Entry {
	multiplier := decimal.NewFromInt(1).Add(pct.Div(hundred))
	out := make([]model.Entry, 0, len(baseline))
	for _, e := range baseline {
		derived := model.Entry{
			ScenarioID:     scenarioID,
			CategoryID:     e.CategoryID,
			CompetenceDate: e.CompetenceDate,
			Amount:         e.Amount,
			Direction:      e.Direction,
			Source:         e.Source,
		}
		if e.Source == model.SourceProjetado && e.Direction == model.DirectionEntrada {
			derived.Amount = e.Amount.Mul(multiplier)
		}
		out = append(out, derived)
	}
	return out
}
