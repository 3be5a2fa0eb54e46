package design

import (
	"fmt"
	"strings"
)

// CircuitID identifies a circuit within a Store. Ids are dense and follow
// insertion order.
type CircuitID int

// NetID identifies a net within its owning circuit.
type NetID int

// InstanceID identifies an instance within its owning circuit.
type InstanceID int

// PinID identifies a pin within its owning circuit. Boundary pins and
// instance pins share one id space.
type PinID int

// NoInstance marks a pin that sits on the circuit boundary.
const NoInstance InstanceID = -1

// ImplType is the implementation kind of a circuit.
type ImplType int

const (
	ImplUnset ImplType = iota
	ImplParamCapacitor
	ImplParamResistor
	ImplParamNFET
	ImplParamPFET
)

var implTypeNames = [...]string{
	ImplUnset:          "UNSET",
	ImplParamCapacitor: "PCELL_CAP",
	ImplParamResistor:  "PCELL_RES",
	ImplParamNFET:      "PCELL_NCH",
	ImplParamPFET:      "PCELL_PCH",
}

func (t ImplType) String() string {
	if t < 0 || int(t) >= len(implTypeNames) {
		return fmt.Sprintf("ImplType(%d)", int(t))
	}
	return implTypeNames[t]
}

// IsFET reports whether the kind is a parameterized transistor.
func (t ImplType) IsFET() bool {
	return t == ImplParamNFET || t == ImplParamPFET
}

// ParseImplType maps a kind name back to its ImplType. Matching ignores
// case; the empty string is ImplUnset.
func ParseImplType(s string) (ImplType, error) {
	if s == "" {
		return ImplUnset, nil
	}
	for i, name := range implTypeNames {
		if strings.EqualFold(s, name) {
			return ImplType(i), nil
		}
	}
	return ImplUnset, fmt.Errorf("design: unknown implementation type %q", s)
}

type netFlag uint8

const (
	flagVdd netFlag = 1 << iota
	flagVss
	flagDigital
	flagAnalog
)

// Net is a named electrical node of one circuit.
type Net struct {
	id    NetID
	name  string
	flags netFlag
	pins  []PinID
}

func (n *Net) ID() NetID     { return n.id }
func (n *Net) Name() string  { return n.name }
func (n *Net) Pins() []PinID { return n.pins }

// MarkVdd flags the net as a supply rail and clears any ground flag.
func (n *Net) MarkVdd() { n.flags = n.flags&^flagVss | flagVdd }

// MarkVss flags the net as a ground rail and clears any supply flag.
func (n *Net) MarkVss() { n.flags = n.flags&^flagVdd | flagVss }

// MarkDigital flags the net as digital and clears the analog flag.
func (n *Net) MarkDigital() { n.flags = n.flags&^flagAnalog | flagDigital }

// MarkAnalog flags the net as analog and clears the digital flag.
func (n *Net) MarkAnalog() { n.flags = n.flags&^flagDigital | flagAnalog }

func (n *Net) IsVdd() bool     { return n.flags&flagVdd != 0 }
func (n *Net) IsVss() bool     { return n.flags&flagVss != 0 }
func (n *Net) IsDigital() bool { return n.flags&flagDigital != 0 }
func (n *Net) IsAnalog() bool  { return n.flags&flagAnalog != 0 }

// IsRail reports whether the net is either supply rail.
func (n *Net) IsRail() bool { return n.flags&(flagVdd|flagVss) != 0 }

// Pin connects a boundary terminal or an instance terminal to a net.
type Pin struct {
	Name     string
	Net      NetID
	Instance InstanceID
}

// IsBoundary reports whether the pin is a terminal of the circuit itself.
func (p *Pin) IsBoundary() bool { return p.Instance == NoInstance }

// Instance places a child circuit inside its owner. Its pins follow the
// order of the child's boundary pins.
type Instance struct {
	id    InstanceID
	name  string
	child CircuitID
	pins  []PinID
}

func (i *Instance) ID() InstanceID   { return i.id }
func (i *Instance) Name() string     { return i.name }
func (i *Instance) Child() CircuitID { return i.child }
func (i *Instance) Pins() []PinID    { return i.pins }

// Circuit is a cell of the hierarchy.
type Circuit struct {
	id        CircuitID
	name      string
	implType  ImplType
	nets      []*Net
	pins      []Pin
	boundary  []PinID
	instances []*Instance
	psubs     []NetID
	nwells    []NetID
}

func (c *Circuit) ID() CircuitID      { return c.id }
func (c *Circuit) Name() string       { return c.name }
func (c *Circuit) ImplType() ImplType { return c.implType }

// Nets returns the nets in insertion order.
func (c *Circuit) Nets() []*Net { return c.nets }

// Net returns the net with the given id, or nil.
func (c *Circuit) Net(id NetID) *Net {
	if id < 0 || int(id) >= len(c.nets) {
		return nil
	}
	return c.nets[id]
}

// NumPins counts boundary and instance pins.
func (c *Circuit) NumPins() int { return len(c.pins) }

// Pin returns the pin with the given id, or nil.
func (c *Circuit) Pin(id PinID) *Pin {
	if id < 0 || int(id) >= len(c.pins) {
		return nil
	}
	return &c.pins[id]
}

// BoundaryPins returns the circuit terminals in declaration order.
func (c *Circuit) BoundaryPins() []PinID { return c.boundary }

// Instances returns the placed instances in insertion order.
func (c *Circuit) Instances() []*Instance { return c.instances }

// Instance returns the instance with the given id, or nil.
func (c *Circuit) Instance(id InstanceID) *Instance {
	if id < 0 || int(id) >= len(c.instances) {
		return nil
	}
	return c.instances[id]
}

// PsubNets returns the nets tied to the substrate.
func (c *Circuit) PsubNets() []NetID { return c.psubs }

// NwellNets returns the nets tied to an n-well.
func (c *Circuit) NwellNets() []NetID { return c.nwells }

// NetByName returns the first net carrying name.
func (c *Circuit) NetByName(name string) (*Net, bool) {
	for _, n := range c.nets {
		if n.name == name {
			return n, true
		}
	}
	return nil, false
}

func (c *Circuit) validNet(id NetID) bool {
	return id >= 0 && int(id) < len(c.nets)
}

func (c *Circuit) addPin(name string, net NetID, inst InstanceID) PinID {
	id := PinID(len(c.pins))
	c.pins = append(c.pins, Pin{Name: name, Net: net, Instance: inst})
	c.nets[net].pins = append(c.nets[net].pins, id)
	return id
}
