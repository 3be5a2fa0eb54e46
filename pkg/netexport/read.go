package netexport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/netexport/sexpr"
)

// Netlist is an exported netlist read back.
type Netlist struct {
	Version  string
	Source   string
	Root     string
	Circuits []Circuit
}

// Circuit is one (circuit ...) clause.
type Circuit struct {
	Name      string
	Impl      string
	Pins      []Terminal
	Nets      []Net
	Instances []Instance
}

// Terminal binds a pin name to a net name.
type Terminal struct {
	Pin string
	Net string
}

// Net is one (net ...) clause.
type Net struct {
	Code    int
	Name    string
	Classes []string
}

// Instance is one (inst ...) clause.
type Instance struct {
	Name  string
	Of    string
	Nodes []Terminal
}

// Circuit returns the first circuit called name.
func (nl *Netlist) Circuit(name string) (*Circuit, bool) {
	for i := range nl.Circuits {
		if nl.Circuits[i].Name == name {
			return &nl.Circuits[i], true
		}
	}
	return nil, false
}

// Net returns the first net called name.
func (c *Circuit) Net(name string) (*Net, bool) {
	for i := range c.Nets {
		if c.Nets[i].Name == name {
			return &c.Nets[i], true
		}
	}
	return nil, false
}

// HasClass reports whether the net carries class.
func (n *Net) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Read parses a netlist written by Write.
func Read(r io.Reader) (*Netlist, error) {
	nodes, err := sexpr.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("netexport: %w", err)
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("netexport: expected 1 top-level expression, got %d", len(nodes))
	}
	top, ok := nodes[0].(*sexpr.List)
	if !ok || top.Key() != "export" {
		return nil, fmt.Errorf("netexport: missing (export ...) clause")
	}

	nl := &Netlist{}
	nl.Version, _ = top.Value("version")
	if d, ok := top.Find("design"); ok {
		nl.Source, _ = d.Value("source")
		nl.Root, _ = d.Value("root")
	}

	circuits, ok := top.Find("circuits")
	if !ok {
		return nil, fmt.Errorf("netexport: missing (circuits ...) clause")
	}
	for _, cl := range circuits.FindAll("circuit") {
		c, err := readCircuit(cl)
		if err != nil {
			return nil, err
		}
		nl.Circuits = append(nl.Circuits, c)
	}
	return nl, nil
}

func readCircuit(l *sexpr.List) (Circuit, error) {
	var c Circuit
	var ok bool
	if c.Name, ok = l.Value("name"); !ok {
		return c, fmt.Errorf("netexport: circuit without name")
	}
	c.Impl, _ = l.Value("impl")

	if pins, ok := l.Find("pins"); ok {
		for _, p := range pins.FindAll("pin") {
			t, err := terminal(p)
			if err != nil {
				return c, fmt.Errorf("netexport: circuit %s: %w", c.Name, err)
			}
			c.Pins = append(c.Pins, t)
		}
	}

	for _, nc := range l.FindAll("net") {
		var n Net
		code, _ := nc.Value("code")
		var err error
		if n.Code, err = strconv.Atoi(code); err != nil {
			return c, fmt.Errorf("netexport: circuit %s: bad net code %q", c.Name, code)
		}
		n.Name, _ = nc.Value("name")
		n.Classes = nc.Values("class")
		c.Nets = append(c.Nets, n)
	}

	for _, il := range l.FindAll("inst") {
		var inst Instance
		inst.Name, _ = il.Value("name")
		inst.Of, _ = il.Value("of")
		for _, nd := range il.FindAll("node") {
			t, err := terminal(nd)
			if err != nil {
				return c, fmt.Errorf("netexport: circuit %s instance %s: %w", c.Name, inst.Name, err)
			}
			inst.Nodes = append(inst.Nodes, t)
		}
		c.Instances = append(c.Instances, inst)
	}
	return c, nil
}

// terminal decodes (pin NAME NET) and (node NAME NET).
func terminal(l *sexpr.List) (Terminal, error) {
	pin, ok1 := l.Get(1).(sexpr.Atom)
	net, ok2 := l.Get(2).(sexpr.Atom)
	if !ok1 || !ok2 {
		return Terminal{}, fmt.Errorf("malformed %s clause %s", l.Key(), l)
	}
	return Terminal{Pin: string(pin), Net: string(net)}, nil
}
