// Package sigpath writes and reads the per-circuit current path artifact.
//
// A .sigpath file has one line per path. Each instance pin on the path is
// written as the instance name and the pin name, each followed by a single
// space, and the line ends with a newline:
//
//	MP S MP D MN D MN S \n
//
// Consumers rely on token pairing only.
package sigpath

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/csflow"
)

// Suffix is appended to the circuit name to form the artifact file name.
const Suffix = ".sigpath"

// FileName returns the artifact name for a circuit.
func FileName(circuit string) string {
	return circuit + Suffix
}

// Write emits the paths of res.
func Write(w io.Writer, res *csflow.Result) error {
	if len(res.PinPaths) != len(res.CellPaths) {
		return fmt.Errorf("sigpath: circuit %s has %d pin paths and %d cell paths",
			res.Circuit, len(res.PinPaths), len(res.CellPaths))
	}

	bw := bufio.NewWriter(w)
	for i, pins := range res.PinPaths {
		cells := res.CellPaths[i]
		if len(pins) != len(cells) {
			return fmt.Errorf("sigpath: circuit %s path %d: %d pins for %d cells",
				res.Circuit, i, len(pins), len(cells))
		}
		for j, pin := range pins {
			bw.WriteString(cells[j])
			bw.WriteByte(' ')
			bw.WriteString(pin)
			bw.WriteByte(' ')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes res to dir/<circuit>.sigpath and returns the path.
func WriteFile(dir string, res *csflow.Result) (string, error) {
	path := filepath.Join(dir, FileName(res.Circuit))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("sigpath: %w", err)
	}
	if err := Write(f, res); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("sigpath: %w", err)
	}
	return path, nil
}
