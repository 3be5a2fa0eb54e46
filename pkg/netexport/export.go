// Package netexport writes the classified hierarchy as an s-expression
// netlist and reads such netlists back.
package netexport

import (
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/sexp"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
)

// FormatVersion is written in the (version ...) clause.
const FormatVersion = "1"

// Options controls the design header.
type Options struct {
	// Source names the document the hierarchy was loaded from.
	Source string
}

// Export renders every circuit of s, in store order.
func Export(s *design.Store, opts Options) string {
	var b strings.Builder
	b.WriteString("(export (version " + FormatVersion + ")\n")
	b.WriteString("  (design\n")
	if opts.Source != "" {
		fmt.Fprintf(&b, "    (source %s)\n", atom(opts.Source))
	}
	if root, err := s.FindRoot(); err == nil {
		fmt.Fprintf(&b, "    (root %s)\n", atom(s.Circuit(root).Name()))
	}
	b.WriteString("  )\n")

	b.WriteString("  (circuits\n")
	for ckt := range s.SubCircuits() {
		writeCircuit(&b, s, ckt)
	}
	b.WriteString("  )\n")
	b.WriteString(")\n")
	return b.String()
}

// Write renders s to w.
func Write(w io.Writer, s *design.Store, opts Options) error {
	if _, err := io.WriteString(w, Export(s, opts)); err != nil {
		return fmt.Errorf("netexport: %w", err)
	}
	return nil
}

func writeCircuit(b *strings.Builder, s *design.Store, ckt *design.Circuit) {
	fmt.Fprintf(b, "    (circuit (name %s) (impl %s)\n", atom(ckt.Name()), ckt.ImplType())

	if pins := ckt.BoundaryPins(); len(pins) > 0 {
		b.WriteString("      (pins")
		for _, pid := range pins {
			p := ckt.Pin(pid)
			fmt.Fprintf(b, " (pin %s %s)", atom(p.Name), atom(ckt.Net(p.Net).Name()))
		}
		b.WriteString(")\n")
	}

	for _, n := range ckt.Nets() {
		fmt.Fprintf(b, "      (net (code %d) (name %s)", n.ID(), atom(n.Name()))
		if classes := netClasses(n); len(classes) > 0 {
			fmt.Fprintf(b, " (class %s)", strings.Join(classes, " "))
		}
		b.WriteString(")\n")
	}

	for _, inst := range ckt.Instances() {
		child := s.Circuit(inst.Child())
		fmt.Fprintf(b, "      (inst (name %s) (of %s)", atom(inst.Name()), atom(child.Name()))
		for _, pid := range inst.Pins() {
			p := ckt.Pin(pid)
			fmt.Fprintf(b, " (node %s %s)", atom(p.Name), atom(ckt.Net(p.Net).Name()))
		}
		b.WriteString(")\n")
	}
	b.WriteString("    )\n")
}

func netClasses(n *design.Net) []string {
	var out []string
	switch {
	case n.IsVdd():
		out = append(out, "vdd")
	case n.IsVss():
		out = append(out, "vss")
	}
	switch {
	case n.IsDigital():
		out = append(out, "digital")
	case n.IsAnalog():
		out = append(out, "analog")
	}
	return out
}

// atom writes s bare when it is a plain symbol and quoted otherwise.
func atom(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\r\n()\"\\#;") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

// Validate checks that text is a single well-formed, non-empty list.
func Validate(text string) error {
	exprs, err := sexp.ParseString(text)
	if err != nil {
		return fmt.Errorf("netexport: %w", err)
	}
	if len(exprs) != 1 {
		return fmt.Errorf("netexport: expected 1 top-level expression, got %d", len(exprs))
	}
	if exprs[0].IsLeaf() || exprs[0].LeafCount() == 0 {
		return fmt.Errorf("netexport: top-level expression is not a list")
	}
	return nil
}
