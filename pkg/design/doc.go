// Package design holds the hierarchical circuit model of a netlist.
//
// A Store owns every circuit of a design. Each circuit owns its nets, its
// boundary pins, the instances it places and the pins of those instances.
// Instances reference other circuits of the same store; primitive devices
// are circuits whose implementation type is one of the parameterized cells.
//
// # Hierarchy
//
// Instantiation edges (parent places child) form a directed acyclic graph.
// Store.AddInstance rejects an edge that would close a cycle before touching
// any state. The root circuit is the single circuit no other circuit
// instantiates; Store.FindRoot answers this from the graph on every call,
// so it is never stale.
//
// # Lifecycle
//
//  1. Build the store, either with the mutation API or with Load from a
//     design document emitted by the netlist front end
//  2. Resolve the root with FindRoot
//  3. Hand circuits to the classifier (net flags are the only state that
//     changes after construction)
//  4. Hand circuits to the current-flow tracer, which only reads
//
// # Thread-Safety
//
// Store methods are safe for concurrent use. Circuit accessors do not lock:
// read them only once construction is finished. Net flag updates are not
// synchronized, so a net must be marked by a single goroutine at a time;
// the classifier gives each circuit to exactly one worker.
package design
