package design

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Document is the structural dump of a parsed netlist. Nets and circuits
// are referenced by name.
type Document struct {
	Circuits []CircuitDoc `json:"circuits"`
}

// CircuitDoc describes one circuit of a Document.
type CircuitDoc struct {
	Name      string        `json:"name"`
	Impl      string        `json:"impl,omitempty"`
	Nets      []string      `json:"nets"`
	Pins      []PinDoc      `json:"pins,omitempty"`
	Psub      []string      `json:"psub,omitempty"`
	Nwell     []string      `json:"nwell,omitempty"`
	Instances []InstanceDoc `json:"instances,omitempty"`
}

// PinDoc is a boundary pin and the net it attaches to.
type PinDoc struct {
	Name string `json:"name"`
	Net  string `json:"net"`
}

// InstanceDoc places the circuit named Of. Nets bind its boundary pins in order.
type InstanceDoc struct {
	Name string   `json:"name"`
	Of   string   `json:"of"`
	Nets []string `json:"nets"`
}

// Load decodes a design document and builds a Store from it. Either the
// whole document is accepted or no store is returned.
func Load(r io.Reader) (*Store, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("design: decode document: %w", err)
	}
	return Build(&doc)
}

// LoadFile is Load over a file path.
func LoadFile(filename string) (*Store, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("design: open document: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// Build populates a new Store from doc. Circuits and their nets, pins and
// body ties are created first; instances are resolved once every circuit
// exists, so a document may reference circuits declared later.
func Build(doc *Document) (*Store, error) {
	s := NewStore()
	netIDs := make([]nameIndex[NetID], len(doc.Circuits))
	byName := make(nameIndex[CircuitID])

	for i := range doc.Circuits {
		cd := &doc.Circuits[i]
		kind, err := ParseImplType(cd.Impl)
		if err != nil {
			return nil, fmt.Errorf("design: circuit %s: %w", cd.Name, err)
		}
		id := s.AddCircuit(cd.Name)
		byName.add(cd.Name, id)
		if err := s.SetImplType(id, kind); err != nil {
			return nil, err
		}

		nets := make(nameIndex[NetID])
		for _, name := range cd.Nets {
			nid, err := s.AddNet(id, name)
			if err != nil {
				return nil, err
			}
			nets.add(name, nid)
		}
		netIDs[i] = nets

		for _, p := range cd.Pins {
			nid, err := nets.resolve("net", p.Net)
			if err != nil {
				return nil, fmt.Errorf("design: circuit %s pin %s: %w", cd.Name, p.Name, err)
			}
			if _, err := s.AddPin(id, p.Name, nid); err != nil {
				return nil, err
			}
		}
		if err := addTies(s.AddPsub, id, nets, cd.Psub); err != nil {
			return nil, fmt.Errorf("design: circuit %s psub: %w", cd.Name, err)
		}
		if err := addTies(s.AddNwell, id, nets, cd.Nwell); err != nil {
			return nil, fmt.Errorf("design: circuit %s nwell: %w", cd.Name, err)
		}
	}

	for i := range doc.Circuits {
		cd := &doc.Circuits[i]
		for _, inst := range cd.Instances {
			child, err := byName.resolve("circuit", inst.Of)
			if err != nil {
				return nil, fmt.Errorf("design: circuit %s instance %s: %w", cd.Name, inst.Name, err)
			}
			bound := make([]NetID, len(inst.Nets))
			for j, name := range inst.Nets {
				if bound[j], err = netIDs[i].resolve("net", name); err != nil {
					return nil, fmt.Errorf("design: circuit %s instance %s: %w", cd.Name, inst.Name, err)
				}
			}
			if _, err := s.AddInstance(CircuitID(i), inst.Name, child, bound); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func addTies(add func(CircuitID, NetID) error, c CircuitID, nets nameIndex[NetID], names []string) error {
	for _, name := range names {
		nid, err := nets.resolve("net", name)
		if err != nil {
			return err
		}
		if err := add(c, nid); err != nil {
			return err
		}
	}
	return nil
}

// nameIndex maps names to ids. A name seen twice is kept as ambiguous.
type nameIndex[T ~int] map[string][]T

func (m nameIndex[T]) add(name string, id T) {
	m[name] = append(m[name], id)
}

func (m nameIndex[T]) resolve(kind, name string) (T, error) {
	ids := m[name]
	switch len(ids) {
	case 0:
		return 0, fmt.Errorf("unknown %s %q", kind, name)
	case 1:
		return ids[0], nil
	}
	return 0, fmt.Errorf("ambiguous %s %q (%d definitions)", kind, name, len(ids))
}
