package design

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const inverterDoc = `{
  "circuits": [
    {
      "name": "top",
      "nets": ["vdd", "gnd", "in", "out"],
      "pins": [{"name": "IN", "net": "in"}, {"name": "OUT", "net": "out"}],
      "instances": [{"name": "xinv", "of": "inv", "nets": ["in", "out", "vdd", "gnd"]}]
    },
    {
      "name": "inv",
      "nets": ["a", "y", "VDD", "VSS_1"],
      "pins": [
        {"name": "A", "net": "a"}, {"name": "Y", "net": "y"},
        {"name": "VDD", "net": "VDD"}, {"name": "VSS", "net": "VSS_1"}
      ],
      "psub": ["VSS_1"],
      "nwell": ["VDD"],
      "instances": [
        {"name": "MP", "of": "pch", "nets": ["y", "a", "VDD", "VDD"]},
        {"name": "MN", "of": "nch", "nets": ["y", "a", "VSS_1", "VSS_1"]}
      ]
    },
    {
      "name": "nch", "impl": "PCELL_NCH",
      "nets": ["d", "g", "s", "b"],
      "pins": [{"name": "D", "net": "d"}, {"name": "G", "net": "g"}, {"name": "S", "net": "s"}, {"name": "B", "net": "b"}]
    },
    {
      "name": "pch", "impl": "PCELL_PCH",
      "nets": ["d", "g", "s", "b"],
      "pins": [{"name": "D", "net": "d"}, {"name": "G", "net": "g"}, {"name": "S", "net": "s"}, {"name": "B", "net": "b"}]
    }
  ]
}`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(inverterDoc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.NumCircuits() != 4 {
		t.Fatalf("got %d circuits, want 4", s.NumCircuits())
	}

	root, err := s.FindRoot()
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if s.Circuit(root).Name() != "top" {
		t.Errorf("root = %s, want top", s.Circuit(root).Name())
	}

	inv, ok := s.CircuitByName("inv")
	if !ok {
		t.Fatalf("inv not found")
	}
	if len(inv.Instances()) != 2 || len(inv.BoundaryPins()) != 4 {
		t.Errorf("inv: %d instances, %d pins", len(inv.Instances()), len(inv.BoundaryPins()))
	}
	if len(inv.PsubNets()) != 1 || inv.Net(inv.PsubNets()[0]).Name() != "VSS_1" {
		t.Errorf("psub ties = %v", inv.PsubNets())
	}
	nch, _ := s.CircuitByName("nch")
	if nch.ImplType() != ImplParamNFET {
		t.Errorf("nch impl = %s", nch.ImplType())
	}
	if inv.ImplType() != ImplUnset {
		t.Errorf("inv impl = %s", inv.ImplType())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "unknown net",
			doc:  `{"circuits":[{"name":"a","nets":["x"],"pins":[{"name":"P","net":"y"}]}]}`,
		},
		{
			name: "unknown circuit",
			doc:  `{"circuits":[{"name":"a","nets":[],"instances":[{"name":"x","of":"b","nets":[]}]}]}`,
		},
		{
			name: "ambiguous circuit",
			doc: `{"circuits":[{"name":"a","nets":[],"instances":[{"name":"x","of":"b","nets":[]}]},
			       {"name":"b","nets":[]},{"name":"b","nets":[]}]}`,
		},
		{
			name: "unknown impl",
			doc:  `{"circuits":[{"name":"a","impl":"PCELL_IND","nets":[]}]}`,
		},
		{
			name:    "cycle",
			doc:     `{"circuits":[{"name":"a","nets":[],"instances":[{"name":"x","of":"a","nets":[]}]}]}`,
			wantErr: ErrCycle,
		},
		{
			name:    "pin count",
			doc:     `{"circuits":[{"name":"a","nets":["n"],"instances":[{"name":"x","of":"b","nets":["n"]}]},{"name":"b","nets":[]}]}`,
			wantErr: ErrPinCount,
		},
		{
			name: "unknown field",
			doc:  `{"circuits":[{"name":"a","nets":[],"ports":[]}]}`,
		},
		{
			name: "truncated",
			doc:  `{"circuits":[`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatalf("expected error, got store with %d circuits", s.NumCircuits())
			}
			if s != nil {
				t.Errorf("failed load must not return a store")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.json")
	if err := os.WriteFile(path, []byte(inverterDoc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
