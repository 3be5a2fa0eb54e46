// Package techdb holds the technology metadata the flow needs from the
// process: the database unit scale, the known layers and the placer spacing
// rules registered on top of them.
package techdb

import (
	"fmt"
	"sort"
	"sync"
)

// Units carries the unit conversion of the technology.
type Units struct {
	// DBU is the number of database units per user unit (typically per micron).
	DBU int
}

// ToDBU converts a real-valued distance in user units into database units.
func (u Units) ToDBU(v float64) int {
	return roundToInt(v * float64(u.DBU))
}

// Lookup is the read-only view of the technology consumed by the core.
type Lookup interface {
	Units() Units
	HasLayer(name string) bool
	LayerID(name string) (int, bool)
}

// TechDB is an in-memory Lookup that also records placer spacing rules.
type TechDB struct {
	mu          sync.RWMutex
	units       Units
	layers      map[string]int
	sameSpacing map[string]int
	nwellLayer  string
}

// NewTechDB creates a technology database with the given dbu scale.
func NewTechDB(dbu int) (*TechDB, error) {
	if dbu <= 0 {
		return nil, fmt.Errorf("techdb: dbu must be positive, got %d", dbu)
	}
	return &TechDB{
		units:       Units{DBU: dbu},
		layers:      make(map[string]int),
		sameSpacing: make(map[string]int),
	}, nil
}

// Units implements Lookup.
func (db *TechDB) Units() Units {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.units
}

// AddLayer registers a named layer with its technology layer id.
func (db *TechDB) AddLayer(name string, id int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.layers[name] = id
}

// HasLayer implements Lookup.
func (db *TechDB) HasLayer(name string) bool {
	_, ok := db.LayerID(name)
	return ok
}

// LayerID implements Lookup.
func (db *TechDB) LayerID(name string) (int, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	id, ok := db.layers[name]
	return id, ok
}

// Layers returns the registered layer names in sorted order.
func (db *TechDB) Layers() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.layers))
	for name := range db.layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddSameLayerSpacingRule records the minimum spacing between two shapes on
// the same layer, already expressed in database units. A later rule for the
// same layer replaces the earlier one.
func (db *TechDB) AddSameLayerSpacingRule(layer string, spacing int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sameSpacing[layer] = spacing
}

// SameLayerSpacing returns the spacing rule for a layer in database units.
func (db *TechDB) SameLayerSpacing(layer string) (int, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.sameSpacing[layer]
	return v, ok
}

// NumSameLayerSpacingRules returns how many layers carry a spacing rule.
func (db *TechDB) NumSameLayerSpacingRules() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.sameSpacing)
}

// SetNwellLayerName sets the layer used to draw n-wells.
func (db *TechDB) SetNwellLayerName(name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nwellLayer = name
}

// NwellLayerName returns the n-well layer name, empty when unset.
func (db *TechDB) NwellLayerName() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.nwellLayer
}
