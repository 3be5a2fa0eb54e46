package techdb

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Recognized top-level keys of the placer spacing document.
const (
	KeySameSpacing = "SAME_SPACING"
	KeyNwellLayer  = "N_WELL_LAYER"
)

// PlacerSpacing is the decoded placer spacing document. Unknown keys are
// dropped by the decoder.
type PlacerSpacing struct {
	SameSpacing map[string]float64 `json:"SAME_SPACING,omitempty"`
	NwellLayer  *string            `json:"N_WELL_LAYER,omitempty"`
}

// LoadPlacerSpacing decodes a placer spacing document and registers its
// rules on db. Same-layer spacings are scaled by the database unit and
// rounded to the nearest integer. db is left untouched when the document
// is rejected.
func LoadPlacerSpacing(r io.Reader, db *TechDB) (*PlacerSpacing, error) {
	var doc PlacerSpacing
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("techdb: decode placer spacing: %w", err)
	}

	for layer, spacing := range doc.SameSpacing {
		if spacing < 0 {
			return nil, fmt.Errorf("techdb: negative spacing %g for layer %s", spacing, layer)
		}
	}

	units := db.Units()
	for layer, spacing := range doc.SameSpacing {
		db.AddSameLayerSpacingRule(layer, units.ToDBU(spacing))
	}
	if doc.NwellLayer != nil {
		db.SetNwellLayerName(*doc.NwellLayer)
	}
	return &doc, nil
}

// LoadPlacerSpacingFile is LoadPlacerSpacing over a file path.
func LoadPlacerSpacingFile(filename string, db *TechDB) (*PlacerSpacing, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("techdb: open placer spacing: %w", err)
	}
	defer f.Close()
	return LoadPlacerSpacing(f, db)
}

// roundToInt rounds half away from zero.
func roundToInt(v float64) int {
	return int(math.Round(v))
}
