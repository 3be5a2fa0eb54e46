package sigpath

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/csflow"
)

func inverterResult() *csflow.Result {
	return &csflow.Result{
		Circuit:   "inv",
		PinPaths:  [][]string{{"S", "D"}, {"D", "S"}},
		CellPaths: [][]string{{"MP", "MP"}, {"MN", "MN"}},
	}
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, inverterResult()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "MP S MP D \nMN D MN S \n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	res := &csflow.Result{Circuit: "leaf", PinPaths: [][]string{}, CellPaths: [][]string{}}
	if err := Write(&buf, res); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestWriteRejectsMisalignedPaths(t *testing.T) {
	res := &csflow.Result{
		Circuit:   "bad",
		PinPaths:  [][]string{{"S", "D"}},
		CellPaths: [][]string{{"MP"}},
	}
	if err := Write(&bytes.Buffer{}, res); err == nil {
		t.Fatal("expected error for misaligned path")
	}
	res.CellPaths = nil
	if err := Write(&bytes.Buffer{}, res); err == nil {
		t.Fatal("expected error for missing cell paths")
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	res := inverterResult()
	if err := Write(&buf, res); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	f, err := parser.Parse(&buf)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	pins, cells := f.Split()
	if !reflect.DeepEqual(pins, res.PinPaths) {
		t.Errorf("pins = %v, want %v", pins, res.PinPaths)
	}
	if !reflect.DeepEqual(cells, res.CellPaths) {
		t.Errorf("cells = %v, want %v", cells, res.CellPaths)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPaths int
		wantErr   bool
	}{
		{name: "empty file", input: "", wantPaths: 0},
		{name: "single path", input: "R1 PLUS R1 MINUS \n", wantPaths: 1},
		{name: "crlf and tabs", input: "R1\tPLUS R1 MINUS\r\nR2 PLUS R2 MINUS\r\n", wantPaths: 2},
		{name: "blank line skipped", input: "R1 PLUS R1 MINUS \n\n", wantPaths: 1},
		{name: "unpaired token", input: "R1 PLUS R1 \n", wantErr: true},
		{name: "missing newline", input: "R1 PLUS R1 MINUS", wantErr: true},
	}

	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parser.ParseString(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}
			pins, cells := f.Split()
			if len(pins) != tt.wantPaths || len(cells) != tt.wantPaths {
				t.Errorf("got %d/%d paths, want %d", len(pins), len(cells), tt.wantPaths)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, inverterResult())
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if path != filepath.Join(dir, "inv.sigpath") {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "MP S MP D \nMN D MN S \n" {
		t.Errorf("file content = %q", data)
	}

	parser, _ := NewParser()
	if _, err := parser.ParseFile(path); err != nil {
		t.Errorf("ParseFile failed: %v", err)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "whole hops", input: "MP S MP D \n\nR1 PLUS R1 MINUS R2 PLUS R2 MINUS \n"},
		{name: "empty", input: ""},
		{name: "half hop", input: "MP S MP D MN D \n", wantErr: true},
		{name: "hop across instances", input: "MP S MN D \n", wantErr: true},
	}

	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := p.ParseString(tt.input)
			if err != nil {
				t.Fatalf("ParseString failed: %v", err)
			}
			err = f.Check()
			if tt.wantErr && err == nil {
				t.Errorf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
