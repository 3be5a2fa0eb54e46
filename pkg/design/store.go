package design

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Store owns the circuits of one design and the instantiation graph
// between them. Graph edges point from the instantiating circuit to the
// instantiated one.
type Store struct {
	mu       sync.RWMutex
	circuits []*Circuit
	refs     []int
	graph    *simple.DirectedGraph
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{graph: simple.NewDirectedGraph()}
}

// AddCircuit registers a new circuit. Names need not be unique.
func (s *Store) AddCircuit(name string) CircuitID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := CircuitID(len(s.circuits))
	s.circuits = append(s.circuits, &Circuit{id: id, name: name})
	s.refs = append(s.refs, 0)
	s.graph.AddNode(simple.Node(id))
	return id
}

// NumCircuits returns how many circuits the store holds.
func (s *Store) NumCircuits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.circuits)
}

// Circuit returns the circuit with the given id, or nil.
func (s *Store) Circuit(id CircuitID) *Circuit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(id)
}

// CircuitByName returns the first circuit registered under name.
func (s *Store) CircuitByName(name string) (*Circuit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.circuits {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// SubCircuits yields every circuit in insertion order. Each range over the
// sequence starts from the first circuit and stops at the count seen when
// it began.
func (s *Store) SubCircuits() iter.Seq[*Circuit] {
	return func(yield func(*Circuit) bool) {
		n := s.NumCircuits()
		for i := 0; i < n; i++ {
			if !yield(s.Circuit(CircuitID(i))) {
				return
			}
		}
	}
}

// AddNet adds a net to circuit c.
func (s *Store) AddNet(c CircuitID, name string) (NetID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ckt, err := s.mustLookup(c)
	if err != nil {
		return 0, err
	}
	id := NetID(len(ckt.nets))
	ckt.nets = append(ckt.nets, &Net{id: id, name: name})
	return id, nil
}

// AddPin adds a boundary pin to circuit c, attached to net.
func (s *Store) AddPin(c CircuitID, name string, net NetID) (PinID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ckt, err := s.mustLookup(c)
	if err != nil {
		return 0, err
	}
	if !ckt.validNet(net) {
		return 0, fmt.Errorf("%w: %d in circuit %s", ErrUnknownNet, net, ckt.name)
	}
	id := ckt.addPin(name, net, NoInstance)
	ckt.boundary = append(ckt.boundary, id)
	return id, nil
}

// AddPsub records that net is tied to the substrate.
func (s *Store) AddPsub(c CircuitID, net NetID) error {
	return s.addBodyTie(c, net, func(ckt *Circuit) *[]NetID { return &ckt.psubs })
}

// AddNwell records that net is tied to an n-well.
func (s *Store) AddNwell(c CircuitID, net NetID) error {
	return s.addBodyTie(c, net, func(ckt *Circuit) *[]NetID { return &ckt.nwells })
}

func (s *Store) addBodyTie(c CircuitID, net NetID, set func(*Circuit) *[]NetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ckt, err := s.mustLookup(c)
	if err != nil {
		return err
	}
	if !ckt.validNet(net) {
		return fmt.Errorf("%w: %d in circuit %s", ErrUnknownNet, net, ckt.name)
	}
	ties := set(ckt)
	if !slices.Contains(*ties, net) {
		*ties = append(*ties, net)
	}
	return nil
}

// SetImplType sets the implementation kind of circuit c.
func (s *Store) SetImplType(c CircuitID, kind ImplType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ckt, err := s.mustLookup(c)
	if err != nil {
		return err
	}
	ckt.implType = kind
	return nil
}

// AddInstance places child inside parent under the given instance name.
// nets binds the boundary pins of child, in order, to nets of parent.
//
// The edge is rejected with a *CycleError when child already reaches parent
// (or is parent). Nothing is modified when an error is returned.
func (s *Store) AddInstance(parent CircuitID, name string, child CircuitID, nets []NetID) (InstanceID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.mustLookup(parent)
	if err != nil {
		return 0, err
	}
	ch, err := s.mustLookup(child)
	if err != nil {
		return 0, err
	}
	if parent == child || topo.PathExistsIn(s.graph, s.graph.Node(int64(child)), s.graph.Node(int64(parent))) {
		return 0, &CycleError{Parent: p.name, Child: ch.name, Path: s.pathNames(child, parent)}
	}
	if len(nets) != len(ch.boundary) {
		return 0, fmt.Errorf("%w: instance %s of %s binds %d nets, %s has %d pins",
			ErrPinCount, name, ch.name, len(nets), ch.name, len(ch.boundary))
	}
	for _, n := range nets {
		if !p.validNet(n) {
			return 0, fmt.Errorf("%w: %d in circuit %s", ErrUnknownNet, n, p.name)
		}
	}

	id := InstanceID(len(p.instances))
	inst := &Instance{id: id, name: name, child: child, pins: make([]PinID, 0, len(nets))}
	for i, n := range nets {
		pinName := ch.pins[ch.boundary[i]].Name
		inst.pins = append(inst.pins, p.addPin(pinName, n, id))
	}
	p.instances = append(p.instances, inst)
	s.refs[child]++
	s.graph.SetEdge(s.graph.NewEdge(simple.Node(parent), simple.Node(child)))
	return id, nil
}

// FindRoot returns the single circuit that no other circuit instantiates.
func (s *Store) FindRoot() (CircuitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roots []CircuitID
	for _, c := range s.circuits {
		if s.graph.To(int64(c.id)).Len() == 0 {
			roots = append(roots, c.id)
		}
	}
	switch len(roots) {
	case 0:
		return 0, ErrNoRoot
	case 1:
		return roots[0], nil
	}
	names := make([]string, len(roots))
	for i, id := range roots {
		names[i] = s.circuits[id].name
	}
	return 0, &AmbiguousRootError{Candidates: names}
}

// Instantiations counts the instances of child across the whole store.
func (s *Store) Instantiations(child CircuitID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lookup(child) == nil {
		return 0
	}
	return s.refs[child]
}

// Children returns the distinct circuits instantiated by parent, sorted by id.
func (s *Store) Children(parent CircuitID) []CircuitID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lookup(parent) == nil {
		return nil
	}
	return sortedIDs(s.graph.From(int64(parent)))
}

// Parents returns the distinct circuits that instantiate child, sorted by id.
func (s *Store) Parents(child CircuitID) []CircuitID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lookup(child) == nil {
		return nil
	}
	return sortedIDs(s.graph.To(int64(child)))
}

func (s *Store) lookup(id CircuitID) *Circuit {
	if id < 0 || int(id) >= len(s.circuits) {
		return nil
	}
	return s.circuits[id]
}

func (s *Store) mustLookup(id CircuitID) (*Circuit, error) {
	c := s.lookup(id)
	if c == nil {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownCircuit, id)
	}
	return c, nil
}

// pathNames returns the circuit names along a shortest instantiation path
// from -> to. It is only called when such a path exists or from == to.
func (s *Store) pathNames(from, to CircuitID) []string {
	if from == to {
		return []string{s.circuits[from].name}
	}

	prev := make(map[int64]int64)
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			nid := e.To().ID()
			if _, seen := prev[nid]; !seen && nid != int64(from) {
				prev[nid] = e.From().ID()
			}
			return true
		},
	}
	bf.Walk(s.graph, s.graph.Node(int64(from)), func(n graph.Node, _ int) bool {
		return n.ID() == int64(to)
	})

	var rev []string
	for id := int64(to); ; id = prev[id] {
		rev = append(rev, s.circuits[id].name)
		if id == int64(from) {
			break
		}
		if _, ok := prev[id]; !ok {
			break
		}
	}
	slices.Reverse(rev)
	return rev
}

func sortedIDs(nodes graph.Nodes) []CircuitID {
	ids := make([]CircuitID, 0, nodes.Len())
	for nodes.Next() {
		ids = append(ids, CircuitID(nodes.Node().ID()))
	}
	slices.Sort(ids)
	return ids
}
