package netexport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
)

func inverterStore(t *testing.T) *design.Store {
	t.Helper()
	s := design.NewStore()
	nch := s.AddCircuit("nch")
	if err := s.SetImplType(nch, design.ImplParamNFET); err != nil {
		t.Fatalf("SetImplType: %v", err)
	}
	for _, p := range []string{"D", "G", "S", "B"} {
		n, _ := s.AddNet(nch, p)
		if _, err := s.AddPin(nch, p, n); err != nil {
			t.Fatalf("AddPin: %v", err)
		}
	}

	inv := s.AddCircuit("inv")
	nets := map[string]design.NetID{}
	for _, name := range []string{"VSS", "in", "out", "clk"} {
		nets[name], _ = s.AddNet(inv, name)
	}
	if _, err := s.AddPin(inv, "A", nets["in"]); err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	if _, err := s.AddInstance(inv, "MN", nch, []design.NetID{nets["out"], nets["in"], nets["VSS"], nets["VSS"]}); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}

	c := s.Circuit(inv)
	c.Net(nets["VSS"]).MarkVss()
	c.Net(nets["VSS"]).MarkAnalog()
	c.Net(nets["in"]).MarkAnalog()
	c.Net(nets["out"]).MarkAnalog()
	c.Net(nets["clk"]).MarkDigital()
	return s
}

func TestExportRoundTrip(t *testing.T) {
	s := inverterStore(t)
	var buf bytes.Buffer
	if err := Write(&buf, s, Options{Source: "inv design.json"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	nl, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if nl.Version != FormatVersion || nl.Source != "inv design.json" {
		t.Errorf("header = %q %q", nl.Version, nl.Source)
	}
	if nl.Root != "inv" {
		t.Errorf("root = %q, want inv", nl.Root)
	}
	if len(nl.Circuits) != 2 {
		t.Fatalf("got %d circuits, want 2", len(nl.Circuits))
	}

	inv, ok := nl.Circuit("inv")
	if !ok {
		t.Fatal("inv missing")
	}
	if inv.Impl != "UNSET" {
		t.Errorf("impl = %s", inv.Impl)
	}
	if len(inv.Pins) != 1 || inv.Pins[0] != (Terminal{Pin: "A", Net: "in"}) {
		t.Errorf("pins = %v", inv.Pins)
	}
	vss, _ := inv.Net("VSS")
	if !vss.HasClass("vss") || !vss.HasClass("analog") || vss.HasClass("vdd") {
		t.Errorf("VSS classes = %v", vss.Classes)
	}
	clk, _ := inv.Net("clk")
	if !clk.HasClass("digital") || clk.Code != 3 {
		t.Errorf("clk = %+v", clk)
	}
	if len(inv.Instances) != 1 || inv.Instances[0].Of != "nch" || len(inv.Instances[0].Nodes) != 4 {
		t.Fatalf("instances = %+v", inv.Instances)
	}
	if inv.Instances[0].Nodes[1] != (Terminal{Pin: "G", Net: "in"}) {
		t.Errorf("gate node = %+v", inv.Instances[0].Nodes[1])
	}

	nch, _ := nl.Circuit("nch")
	if nch.Impl != "PCELL_NCH" {
		t.Errorf("nch impl = %s", nch.Impl)
	}
}

func TestExportUnclassifiedNetHasNoClass(t *testing.T) {
	s := design.NewStore()
	c := s.AddCircuit("raw")
	if _, err := s.AddNet(c, "n1"); err != nil {
		t.Fatalf("AddNet: %v", err)
	}
	out := Export(s, Options{})
	if strings.Contains(out, "(class") {
		t.Errorf("unexpected class clause in %s", out)
	}
	if strings.Contains(out, "(source") {
		t.Errorf("unexpected source clause in %s", out)
	}
}

func TestExportOmitsAmbiguousRoot(t *testing.T) {
	s := design.NewStore()
	s.AddCircuit("a")
	s.AddCircuit("b")
	if strings.Contains(Export(s, Options{}), "(root") {
		t.Errorf("root clause written for ambiguous hierarchy")
	}
}

func TestAtomQuoting(t *testing.T) {
	tests := map[string]string{
		"VDD":     "VDD",
		"net<3>":  "net<3>",
		"a b":     `"a b"`,
		"":        `""`,
		`say"hi`:  `"say\"hi"`,
		"x(1)":    `"x(1)"`,
		"#hidden": `"#hidden"`,
	}
	for in, want := range tests {
		if got := atom(in); got != want {
			t.Errorf("atom(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Export(inverterStore(t), Options{})); err != nil {
		t.Errorf("Validate(export) failed: %v", err)
	}
	if err := Validate("(a) (b)"); err == nil {
		t.Errorf("expected error for two top-level expressions")
	}
}

func TestReadErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"(netlist)",
		"(export (version 1))",
		"(export (circuits (circuit (impl UNSET))))",
		"(export (circuits (circuit (name a) (net (code x) (name n)))))",
		"(export (circuits",
	} {
		if _, err := Read(strings.NewReader(input)); err == nil {
			t.Errorf("Read(%q) should fail", input)
		}
	}
}
