package flow

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/classify"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/csflow"
)

// Params controls one run of the flow.
type Params struct {
	// Netlist is the design document to load. Required.
	Netlist string `yaml:"netlist"`
	// PlacerSpacing is an optional placer spacing rule document.
	PlacerSpacing string `yaml:"placer_spacing,omitempty"`
	// ResultDir receives the .sigpath artifacts.
	ResultDir string `yaml:"result_dir" validate:"required"`

	// DBU is the number of database units per micron.
	DBU int `yaml:"dbu" validate:"gt=0"`
	// Layers are registered on the technology in order; a layer's id is
	// its index.
	Layers []string `yaml:"layers,omitempty" validate:"dive,required"`

	Names classify.NameLists `yaml:"names"`
	Trace csflow.Options     `yaml:"trace"`

	// Workers bounds the number of circuits classified concurrently.
	Workers int `yaml:"workers" validate:"gte=0"`
}

// DefaultParams returns a Params with sensible defaults. Netlist is left
// empty and must be set by the caller.
func DefaultParams() *Params {
	return &Params{
		ResultDir: ".",
		DBU:       1000,
		Names:     classify.DefaultNameLists(),
		Trace:     csflow.Options{Workers: runtime.NumCPU()},
		Workers:   runtime.NumCPU(),
	}
}

// LoadParams reads a YAML run configuration on top of DefaultParams.
func LoadParams(filename string) (*Params, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("flow: read params: %w", err)
	}
	p := DefaultParams()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("flow: parse params %s: %w", filename, err)
	}
	return p, nil
}

// ParamError reports an invalid or missing run parameter.
type ParamError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ParamError) Error() string {
	if e.Field == "" {
		return "flow: " + e.Msg
	}
	return fmt.Sprintf("flow: parameter %s: %s", e.Field, e.Msg)
}

func (e *ParamError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the parameters. The first problem is returned as a
// *ParamError.
func (p *Params) Validate() error {
	if p.Netlist == "" {
		return &ParamError{Field: "netlist", Msg: "no input netlist file"}
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ParamError{
				Field: fe.Namespace(),
				Msg:   fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value()),
				Err:   err,
			}
		}
		return &ParamError{Msg: err.Error(), Err: err}
	}
	return nil
}
