package csflow

import "github.com/OpenTraceLab/OpenTraceFlow/pkg/design"

// components tracks which nets of one circuit are joined through conducting
// instance pins, using a union-find over net ids.
type components struct {
	parent []design.NetID
	rank   []int
}

// newComponents starts with every net in its own component.
func newComponents(n int) *components {
	c := &components{
		parent: make([]design.NetID, n),
		rank:   make([]int, n),
	}
	for i := range c.parent {
		c.parent[i] = design.NetID(i)
	}
	return c
}

// connect merges the components of a and b.
func (c *components) connect(a, b design.NetID) {
	rootA := c.find(a)
	rootB := c.find(b)
	if rootA == rootB {
		return
	}

	// Union by rank
	switch {
	case c.rank[rootA] < c.rank[rootB]:
		c.parent[rootA] = rootB
	case c.rank[rootA] > c.rank[rootB]:
		c.parent[rootB] = rootA
	default:
		c.parent[rootB] = rootA
		c.rank[rootA]++
	}
}

// find returns the representative net of the component holding n.
func (c *components) find(n design.NetID) design.NetID {
	root := n
	for c.parent[root] != root {
		root = c.parent[root]
	}

	// Path compression
	for n != root {
		next := c.parent[n]
		c.parent[n] = root
		n = next
	}
	return root
}
