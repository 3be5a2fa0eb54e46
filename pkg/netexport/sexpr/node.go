// Package sexpr reads the s-expressions written by the netlist exporter.
package sexpr

import "strings"

// Node is an atom or a list.
type Node interface {
	IsLeaf() bool
	// LeafCount returns the number of elements of a list, 1 for an atom.
	LeafCount() int
	String() string
}

// Atom is a symbol or a decoded quoted string.
type Atom string

func (a Atom) IsLeaf() bool   { return true }
func (a Atom) LeafCount() int { return 1 }
func (a Atom) String() string { return string(a) }

// List is a parenthesized sequence of nodes.
type List struct {
	elems []Node
}

func (l *List) IsLeaf() bool   { return false }
func (l *List) LeafCount() int { return len(l.elems) }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range l.elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at index, or nil.
func (l *List) Get(index int) Node {
	if index < 0 || index >= len(l.elems) {
		return nil
	}
	return l.elems[index]
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Key returns the leading atom of the list, empty if there is none.
func (l *List) Key() string {
	if a, ok := l.Get(0).(Atom); ok {
		return string(a)
	}
	return ""
}

// Find returns the first child list whose key is key.
func (l *List) Find(key string) (*List, bool) {
	for _, e := range l.elems {
		if sub, ok := e.(*List); ok && sub.Key() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAll returns every child list whose key is key.
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, e := range l.elems {
		if sub, ok := e.(*List); ok && sub.Key() == key {
			out = append(out, sub)
		}
	}
	return out
}

// Value returns the atom following the key of the child list key, as in
// (name VDD).
func (l *List) Value(key string) (string, bool) {
	sub, ok := l.Find(key)
	if !ok {
		return "", false
	}
	a, ok := sub.Get(1).(Atom)
	return string(a), ok
}

// Values returns every atom after the key of the child list key.
func (l *List) Values(key string) []string {
	sub, ok := l.Find(key)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range sub.elems[1:] {
		if a, ok := e.(Atom); ok {
			out = append(out, string(a))
		}
	}
	return out
}
