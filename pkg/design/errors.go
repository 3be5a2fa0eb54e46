package design

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for hierarchy operations.
var (
	// ErrCycle is returned when an instance would close an instantiation cycle.
	ErrCycle = errors.New("design: instantiation cycle")

	// ErrNoRoot is returned when no circuit has in-degree zero.
	ErrNoRoot = errors.New("design: no root circuit")

	// ErrAmbiguousRoot is returned when several circuits have in-degree zero.
	ErrAmbiguousRoot = errors.New("design: ambiguous root circuit")

	// ErrUnknownCircuit is returned for a circuit id or name the store does not hold.
	ErrUnknownCircuit = errors.New("design: unknown circuit")

	// ErrUnknownNet is returned for a net id outside the owning circuit.
	ErrUnknownNet = errors.New("design: unknown net")

	// ErrPinCount is returned when an instance does not bind every boundary
	// pin of the circuit it references.
	ErrPinCount = errors.New("design: pin count mismatch")
)

// CycleError describes a rejected instantiation edge.
type CycleError struct {
	Parent string
	Child  string
	// Path lists the circuit names from Child back to Parent through
	// existing instantiation edges.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("design: instantiating %s in %s creates a cycle: %s -> %s",
		e.Child, e.Parent, e.Parent, strings.Join(e.Path, " -> "))
}

// Unwrap lets errors.Is match ErrCycle.
func (e *CycleError) Unwrap() error { return ErrCycle }

// AmbiguousRootError lists every circuit that qualifies as root.
type AmbiguousRootError struct {
	Candidates []string
}

func (e *AmbiguousRootError) Error() string {
	return fmt.Sprintf("design: %d root candidates: %s",
		len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Unwrap lets errors.Is match ErrAmbiguousRoot.
func (e *AmbiguousRootError) Unwrap() error { return ErrAmbiguousRoot }
