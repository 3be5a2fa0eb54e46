package sigpath

import "fmt"

// File is a parsed .sigpath file. Blank lines parse as paths without
// steps.
type File struct {
	Paths []*Path `@@*`
}

// Path is one line: the instance/pin steps of a current path in walk order.
type Path struct {
	Steps []*Step `@@* EOL`
}

// Step is one instance pin on a path.
type Step struct {
	Cell string `@Word`
	Pin  string `@Word`
}

// Split returns the pin and cell sequences of every non-blank path, index
// aligned the same way the tracer reports them.
func (f *File) Split() (pinPaths, cellPaths [][]string) {
	pinPaths = [][]string{}
	cellPaths = [][]string{}
	for _, p := range f.Paths {
		if len(p.Steps) == 0 {
			continue
		}
		pins := make([]string, len(p.Steps))
		cells := make([]string, len(p.Steps))
		for i, s := range p.Steps {
			pins[i] = s.Pin
			cells[i] = s.Cell
		}
		pinPaths = append(pinPaths, pins)
		cellPaths = append(cellPaths, cells)
	}
	return pinPaths, cellPaths
}

// Check verifies that every path is made of whole hops: an even number of
// steps where each entry pin and exit pin belong to the same instance.
func (f *File) Check() error {
	line := 0
	for _, p := range f.Paths {
		line++
		if len(p.Steps) == 0 {
			continue
		}
		if len(p.Steps)%2 != 0 {
			return fmt.Errorf("sigpath: line %d: %d steps do not form whole hops", line, len(p.Steps))
		}
		for i := 0; i < len(p.Steps); i += 2 {
			if in, out := p.Steps[i].Cell, p.Steps[i+1].Cell; in != out {
				return fmt.Errorf("sigpath: line %d: hop %d enters %s but leaves %s", line, i/2+1, in, out)
			}
		}
	}
	return nil
}
