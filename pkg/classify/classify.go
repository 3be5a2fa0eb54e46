// Package classify assigns rail and signal-domain flags to the nets of a
// design.
//
// Each circuit goes through three passes in a fixed order, later passes
// overwriting earlier ones:
//
//  1. Body ties: psub nets become Vss, nwell nets become Vdd
//  2. Name lists: nets named in the VDD list become Vdd, then nets named in
//     the VSS list become Vss
//  3. Signal domain: nets named in the digital list become digital, every
//     other net analog
//
// Names match by exact string equality. A listed name that matches no net
// is not an error.
package classify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceFlow/internal/logging"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
)

// DefaultDigitalNets is the digital name list used when none is configured.
var DefaultDigitalNets = []string{"clk"}

// NameLists holds the externally supplied net name sets.
type NameLists struct {
	Vdd     []string `yaml:"vdd" json:"vdd"`
	Vss     []string `yaml:"vss" json:"vss"`
	Digital []string `yaml:"digital" json:"digital"`
}

// DefaultNameLists returns empty rail lists and the default digital list.
func DefaultNameLists() NameLists {
	return NameLists{Digital: append([]string(nil), DefaultDigitalNets...)}
}

// Report counts the flags set by a run. Vdd and Vss count rail nets; every
// net is counted in exactly one of Digital and Analog.
type Report struct {
	Circuits int
	Nets     int
	Vdd      int
	Vss      int
	Digital  int
	Analog   int
}

func (r *Report) add(o Report) {
	r.Circuits += o.Circuits
	r.Nets += o.Nets
	r.Vdd += o.Vdd
	r.Vss += o.Vss
	r.Digital += o.Digital
	r.Analog += o.Analog
}

// Classifier runs the classification passes over every circuit of a store.
type Classifier struct {
	vdd, vss, digital map[string]struct{}
	workers           int
}

// New creates a classifier. workers bounds the number of circuits
// classified concurrently; values below 1 mean one.
func New(names NameLists, workers int) *Classifier {
	if workers < 1 {
		workers = 1
	}
	return &Classifier{
		vdd:     toSet(names.Vdd),
		vss:     toSet(names.Vss),
		digital: toSet(names.Digital),
		workers: workers,
	}
}

// Run classifies every circuit of s. Each circuit is handled by exactly
// one worker, so no net is written concurrently.
func (c *Classifier) Run(ctx context.Context, s *design.Store) (Report, error) {
	logger := logging.FromContext(ctx)

	var circuits []*design.Circuit
	for ckt := range s.SubCircuits() {
		circuits = append(circuits, ckt)
	}
	reports := make([]Report, len(circuits))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, ckt := range circuits {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("classify: circuit %s: %w", ckt.Name(), err)
			}
			reports[i] = c.Circuit(ckt)
			logger.Debug("classified circuit",
				"circuit", ckt.Name(),
				"nets", reports[i].Nets,
				"vdd", reports[i].Vdd,
				"vss", reports[i].Vss,
				"digital", reports[i].Digital)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var total Report
	for _, r := range reports {
		total.add(r)
	}
	return total, nil
}

// Circuit runs the three passes over one circuit.
func (c *Classifier) Circuit(ckt *design.Circuit) Report {
	for _, id := range ckt.PsubNets() {
		ckt.Net(id).MarkVss()
	}
	for _, id := range ckt.NwellNets() {
		ckt.Net(id).MarkVdd()
	}

	for _, n := range ckt.Nets() {
		if _, ok := c.vdd[n.Name()]; ok {
			n.MarkVdd()
		}
	}
	for _, n := range ckt.Nets() {
		if _, ok := c.vss[n.Name()]; ok {
			n.MarkVss()
		}
	}

	r := Report{Circuits: 1}
	for _, n := range ckt.Nets() {
		if _, ok := c.digital[n.Name()]; ok {
			n.MarkDigital()
		} else {
			n.MarkAnalog()
		}
		r.Nets++
		switch {
		case n.IsVdd():
			r.Vdd++
		case n.IsVss():
			r.Vss++
		}
		if n.IsDigital() {
			r.Digital++
		} else {
			r.Analog++
		}
	}
	return r
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
