// Package csflow enumerates the current paths of circuits whose
// implementation is not yet fixed.
//
// A circuit is seen as a bipartite graph of nets and instance pins. A hop
// leaves a net through an instance pin and re-enters the net graph through
// another conducting pin of the same instance. A path is a maximal walk
// that starts on a terminal net (a rail or a net on the circuit boundary)
// and never uses the same instance pin twice. Nets may be revisited through
// other pins. Rails end a walk; boundary nets are walked through and only
// end a walk that cannot be extended to another terminal. Every such path
// is reported once.
package csflow

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceFlow/internal/logging"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
)

// DefaultFETControlPins are the transistor pins that carry no channel
// current: gate and bulk.
var DefaultFETControlPins = []string{"G", "GATE", "B", "BULK", "BODY"}

// Options bounds the search. Zero limits mean unlimited.
type Options struct {
	// MaxPaths caps the number of paths reported per circuit.
	MaxPaths int `yaml:"max_paths" validate:"gte=0"`
	// MaxDepth caps the number of instance hops in one path.
	MaxDepth int `yaml:"max_depth" validate:"gte=0"`
	// Workers bounds how many circuits are traced at once.
	Workers int `yaml:"workers" validate:"gte=0"`
	// FETControlPins overrides DefaultFETControlPins when non-nil.
	FETControlPins []string `yaml:"fet_control_pins,omitempty"`
}

// Result holds the paths of one circuit. PinPaths and CellPaths are index
// aligned: CellPaths[i][j] is the instance owning pin PinPaths[i][j].
type Result struct {
	Circuit   string
	CircuitID design.CircuitID
	PinPaths  [][]string
	CellPaths [][]string
	// Truncated is set when MaxPaths or MaxDepth cut the search short.
	Truncated bool
}

// NumPaths returns how many paths were found.
func (r *Result) NumPaths() int { return len(r.PinPaths) }

// CircuitSource resolves the circuits referenced by instances.
type CircuitSource interface {
	Circuit(id design.CircuitID) *design.Circuit
}

// Tracer finds current paths.
type Tracer struct {
	opts        Options
	controlPins map[string]struct{}
}

// New creates a Tracer with the given limits.
func New(opts Options) *Tracer {
	pins := opts.FETControlPins
	if pins == nil {
		pins = DefaultFETControlPins
	}
	set := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		set[strings.ToUpper(p)] = struct{}{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Tracer{opts: opts, controlPins: set}
}

// Eligible reports whether ckt is traced at all.
func Eligible(ckt *design.Circuit) bool {
	return ckt.ImplType() == design.ImplUnset
}

// TraceAll traces every eligible circuit of s and returns the results in
// store order. Circuits are traced concurrently; cancellation is checked
// before each circuit starts.
func (t *Tracer) TraceAll(ctx context.Context, s *design.Store) ([]*Result, error) {
	logger := logging.FromContext(ctx)

	var circuits []*design.Circuit
	for ckt := range s.SubCircuits() {
		if Eligible(ckt) {
			circuits = append(circuits, ckt)
		}
	}
	results := make([]*Result, len(circuits))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)
	for i, ckt := range circuits {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("csflow: circuit %s: %w", ckt.Name(), err)
			}
			res := t.Trace(s, ckt)
			if res.Truncated {
				logger.Warn("current flow search truncated",
					"circuit", ckt.Name(),
					"paths", res.NumPaths(),
					"max_paths", t.opts.MaxPaths,
					"max_depth", t.opts.MaxDepth)
			}
			logger.Debug("traced circuit", "circuit", ckt.Name(), "paths", res.NumPaths())
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Trace enumerates the paths of one circuit. src resolves the circuits of
// its instances so transistor control pins can be recognised. A circuit
// without paths yields empty, non-nil slices.
func (t *Tracer) Trace(src CircuitSource, ckt *design.Circuit) *Result {
	res := &Result{
		Circuit:   ckt.Name(),
		CircuitID: ckt.ID(),
		PinPaths:  [][]string{},
		CellPaths: [][]string{},
	}

	w := t.newWalker(src, ckt, res)
	for _, n := range ckt.Nets() {
		start := n.ID()
		if w.rank[start] < 0 || w.lonely(start) {
			continue
		}
		w.start = start
		w.walk(start, 0)
		if w.stop {
			break
		}
	}
	return res
}

// Terminal ranks. A path is kept in the orientation that starts on the
// lower rank.
const (
	rankNone int8 = -1
	rankVdd  int8 = 0
	rankIO   int8 = 1
	rankVss  int8 = 2
)

type walker struct {
	ckt      *design.Circuit
	opts     *Options
	res      *Result
	conducts []bool
	blocked  []bool
	rank     []int8
	comp     *components
	termsIn  map[design.NetID]int

	start design.NetID
	used  []bool
	pins  []design.PinID
	stop  bool
	seen  []bool
}

func (t *Tracer) newWalker(src CircuitSource, ckt *design.Circuit, res *Result) *walker {
	nNets := len(ckt.Nets())
	w := &walker{
		ckt:      ckt,
		opts:     &t.opts,
		res:      res,
		conducts: make([]bool, ckt.NumPins()),
		blocked:  make([]bool, nNets),
		rank:     make([]int8, nNets),
		comp:     newComponents(nNets),
		termsIn:  make(map[design.NetID]int),
		used:     make([]bool, ckt.NumPins()),
		seen:     make([]bool, nNets),
	}

	for _, n := range ckt.Nets() {
		w.blocked[n.ID()] = n.IsDigital()
		w.rank[n.ID()] = rankNone
		switch {
		case n.IsDigital():
		case n.IsVdd():
			w.rank[n.ID()] = rankVdd
		case n.IsVss():
			w.rank[n.ID()] = rankVss
		}
	}
	for _, pid := range ckt.BoundaryPins() {
		net := ckt.Pin(pid).Net
		if w.rank[net] == rankNone && !w.blocked[net] {
			w.rank[net] = rankIO
		}
	}

	for _, inst := range ckt.Instances() {
		child := src.Circuit(inst.Child())
		fet := child != nil && child.ImplType().IsFET()
		var first design.NetID = -1
		for _, pid := range inst.Pins() {
			p := ckt.Pin(pid)
			if fet && t.isControlPin(p.Name) {
				continue
			}
			if w.blocked[p.Net] {
				continue
			}
			w.conducts[pid] = true
			if first < 0 {
				first = p.Net
			} else {
				w.comp.connect(first, p.Net)
			}
		}
	}

	for _, n := range ckt.Nets() {
		if w.rank[n.ID()] >= 0 {
			w.termsIn[w.comp.find(n.ID())]++
		}
	}
	return w
}

func (t *Tracer) isControlPin(name string) bool {
	_, ok := t.controlPins[strings.ToUpper(name)]
	return ok
}

// lonely reports whether no other terminal shares the component of n.
func (w *walker) lonely(n design.NetID) bool {
	return w.termsIn[w.comp.find(n)] < 2
}

// walk extends the current path from net over unused conducting pins.
// hops counts the instance hops taken so far.
func (w *walker) walk(net design.NetID, hops int) {
	for _, pid := range w.ckt.Net(net).Pins() {
		if !w.conducts[pid] || w.used[pid] {
			continue
		}
		inst := w.ckt.Instance(w.ckt.Pin(pid).Instance)
		for _, qid := range inst.Pins() {
			if w.stop {
				return
			}
			if qid == pid || !w.conducts[qid] || w.used[qid] {
				continue
			}
			if w.opts.MaxDepth > 0 && hops >= w.opts.MaxDepth {
				w.res.Truncated = true
				continue
			}

			w.used[pid], w.used[qid] = true, true
			w.pins = append(w.pins, pid, qid)
			w.arrive(w.ckt.Pin(qid).Net, hops+1)
			w.pins = w.pins[:len(w.pins)-2]
			w.used[pid], w.used[qid] = false, false
		}
	}
}

// arrive continues or ends the walk on net. A rail other than the start
// ends it. A boundary net other than the start ends it only when no
// extension reaches another terminal.
func (w *walker) arrive(net design.NetID, hops int) {
	switch r := w.rank[net]; {
	case r == rankVdd || r == rankVss:
		if net != w.start {
			w.emit(net)
		}
	case r == rankIO && net != w.start && !w.extends(net, w.start):
		w.emit(net)
	default:
		w.walk(net, hops)
	}
}

// extends reports whether a walk leaving from over unused pins can reach a
// terminal other than avoid. A rail avoid blocks the walk, a boundary
// avoid is passed through. Any such walk contains one that visits each net
// once, so a breadth-first search over nets decides it.
func (w *walker) extends(from, avoid design.NetID) bool {
	clear(w.seen)
	w.seen[from] = true
	queue := []design.NetID{from}
	for len(queue) > 0 {
		net := queue[0]
		queue = queue[1:]
		for _, pid := range w.ckt.Net(net).Pins() {
			if !w.conducts[pid] || w.used[pid] {
				continue
			}
			inst := w.ckt.Instance(w.ckt.Pin(pid).Instance)
			for _, qid := range inst.Pins() {
				if qid == pid || !w.conducts[qid] || w.used[qid] {
					continue
				}
				next := w.ckt.Pin(qid).Net
				if w.seen[next] {
					continue
				}
				w.seen[next] = true
				switch {
				case next == avoid:
					if w.rank[next] == rankIO {
						queue = append(queue, next)
					}
				case w.rank[next] >= 0:
					return true
				default:
					queue = append(queue, next)
				}
			}
		}
	}
	return false
}

// emit records the current path if it runs in the kept orientation and
// cannot be extended backwards past a boundary start.
func (w *walker) emit(end design.NetID) {
	rs, re := w.rank[w.start], w.rank[end]
	if rs > re || (rs == re && w.start > end) {
		return
	}
	if rs == rankIO && w.extends(w.start, end) {
		return
	}
	if w.opts.MaxPaths > 0 && len(w.res.PinPaths) >= w.opts.MaxPaths {
		w.res.Truncated = true
		w.stop = true
		return
	}

	pinPath := make([]string, len(w.pins))
	cellPath := make([]string, len(w.pins))
	for i, pid := range w.pins {
		p := w.ckt.Pin(pid)
		pinPath[i] = p.Name
		cellPath[i] = w.ckt.Instance(p.Instance).Name()
	}
	w.res.PinPaths = append(w.res.PinPaths, pinPath)
	w.res.CellPaths = append(w.res.CellPaths, cellPath)
}
