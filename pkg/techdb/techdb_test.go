package techdb

import (
	"strings"
	"testing"
)

func TestNewTechDBRejectsNonPositiveDBU(t *testing.T) {
	for _, dbu := range []int{0, -1000} {
		if _, err := NewTechDB(dbu); err == nil {
			t.Errorf("NewTechDB(%d) should fail", dbu)
		}
	}
}

func TestLayers(t *testing.T) {
	db, err := NewTechDB(1000)
	if err != nil {
		t.Fatalf("NewTechDB failed: %v", err)
	}
	db.AddLayer("M2", 12)
	db.AddLayer("M1", 11)

	if !db.HasLayer("M1") {
		t.Errorf("expected M1 to be known")
	}
	if db.HasLayer("M3") {
		t.Errorf("M3 should not be known")
	}
	id, ok := db.LayerID("M2")
	if !ok || id != 12 {
		t.Errorf("LayerID(M2) = %d, %v; want 12, true", id, ok)
	}
	got := strings.Join(db.Layers(), ",")
	if got != "M1,M2" {
		t.Errorf("Layers() = %s, want M1,M2", got)
	}
}

func TestLoadPlacerSpacing(t *testing.T) {
	tests := []struct {
		name      string
		dbu       int
		doc       string
		wantRules map[string]int
		wantNwell string
		wantErr   bool
	}{
		{
			name:      "same spacing and nwell",
			dbu:       1000,
			doc:       `{"SAME_SPACING": {"M1": 0.14}, "N_WELL_LAYER": "NW"}`,
			wantRules: map[string]int{"M1": 140},
			wantNwell: "NW",
		},
		{
			name:      "rounding to nearest",
			dbu:       2000,
			doc:       `{"SAME_SPACING": {"M1": 0.0014, "M2": 0.0011}}`,
			wantRules: map[string]int{"M1": 3, "M2": 2},
		},
		{
			name:      "unknown keys ignored",
			dbu:       1000,
			doc:       `{"DIFF_SPACING": {"M1": 1.0}, "N_WELL_LAYER": "NWELL"}`,
			wantRules: map[string]int{},
			wantNwell: "NWELL",
		},
		{
			name:    "negative spacing",
			dbu:     1000,
			doc:     `{"SAME_SPACING": {"M1": -0.1}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			dbu:     1000,
			doc:     `{"SAME_SPACING": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewTechDB(tt.dbu)
			if err != nil {
				t.Fatalf("NewTechDB failed: %v", err)
			}

			_, err = LoadPlacerSpacing(strings.NewReader(tt.doc), db)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadPlacerSpacing failed: %v", err)
			}

			if db.NumSameLayerSpacingRules() != len(tt.wantRules) {
				t.Errorf("got %d rules, want %d", db.NumSameLayerSpacingRules(), len(tt.wantRules))
			}
			for layer, want := range tt.wantRules {
				got, ok := db.SameLayerSpacing(layer)
				if !ok || got != want {
					t.Errorf("SameLayerSpacing(%s) = %d, %v; want %d", layer, got, ok, want)
				}
			}
			if db.NwellLayerName() != tt.wantNwell {
				t.Errorf("NwellLayerName() = %q, want %q", db.NwellLayerName(), tt.wantNwell)
			}
		})
	}
}

func TestLoadPlacerSpacingRejectedLeavesRulesUntouched(t *testing.T) {
	db, err := NewTechDB(1000)
	if err != nil {
		t.Fatalf("NewTechDB failed: %v", err)
	}
	db.AddSameLayerSpacingRule("POLY", 210)

	doc := `{"SAME_SPACING": {"M1": 0.14, "M2": -0.1, "M3": 0.2, "M4": 0.3}, "N_WELL_LAYER": "NW"}`
	for i := 0; i < 10; i++ {
		if _, err := LoadPlacerSpacing(strings.NewReader(doc), db); err == nil {
			t.Fatalf("expected error for negative spacing")
		}
		if n := db.NumSameLayerSpacingRules(); n != 1 {
			t.Fatalf("attempt %d: got %d rules after a rejected document, want 1", i, n)
		}
		if db.NwellLayerName() != "" {
			t.Fatalf("attempt %d: n-well layer set by a rejected document", i)
		}
	}
}
