package layout

import (
	"errors"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		sheets  []string
		want    Variant
		wantErr bool
	}{
		{
			name:   "current layout",
			sheets: []string{"FDC-REAL", "VENDAS", "INDICADORES"},
			want:   VariantHabitus,
		},
		{
			name:   "minimal current layout",
			sheets: []string{"FDC-REAL"},
			want:   VariantHabitus,
		},
		{
			name:   "legacy layout",
			sheets: []string{"Painel Controle", "PROFECIA", "VENDAS"},
			want:   VariantProfecia,
		},
		{
			// A legacy workbook carrying FDC-REAL must still resolve as
			// legacy: the stricter signature is checked first.
			name:   "legacy workbook with realized sheet",
			sheets: []string{"Painel Controle", "PROFECIA", "VENDAS", "FDC-REAL"},
			want:   VariantProfecia,
		},
		{
			name:    "incomplete legacy set without realized sheet",
			sheets:  []string{"Painel Controle", "VENDAS"},
			wantErr: true,
		},
		{
			name:    "unrelated workbook",
			sheets:  []string{"Sheet1", "Sheet2"},
			wantErr: true,
		},
		{
			name:    "no sheets",
			sheets:  nil,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Detect(tt.sheets)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Detect(%v) expected error, got %v", tt.sheets, sig.Variant)
				}
				var layoutErr *UnsupportedLayoutError
				if !errors.As(err, &layoutErr) {
					t.Fatalf("expected UnsupportedLayoutError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect(%v) unexpected error: %v", tt.sheets, err)
			}
			if sig.Variant != tt.want {
				t.Errorf("Detect(%v) = %v, want %v", tt.sheets, sig.Variant, tt.want)
			}
		})
	}
}

func TestHasSheetCaseInsensitive(t *testing.T) {
	sheets := []string{"fdc-real", "Vendas"}

	name, ok := HasSheet(sheets, SheetFDCReal)
	if !ok || name != "fdc-real" {
		t.Errorf("HasSheet = (%q, %v), want (fdc-real, true)", name, ok)
	}
	if _, ok := HasSheet(sheets, SheetExpenses); ok {
		t.Error("HasSheet should not match an absent sheet")
	}
}
