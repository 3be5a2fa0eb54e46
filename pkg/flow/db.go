// Package flow drives one run: it loads the technology, the design and the
// placer spacing rules, resolves the root circuit, classifies nets and
// writes the current paths of every unresolved circuit.
//
// Stages must run in order:
//
//	db.Parse(ctx)              // tech, design, spacing rules, root
//	db.PostProcessing(ctx)     // net classification
//	db.ComputeCurrentFlow(ctx) // path search and .sigpath artifacts
//
// Run performs all three.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/OpenTraceLab/OpenTraceFlow/internal/logging"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/classify"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/csflow"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/sigpath"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/techdb"
)

const tracerName = "github.com/OpenTraceLab/OpenTraceFlow/pkg/flow"

// ErrStageOrder is returned when a stage runs before the one it depends on.
var ErrStageOrder = errors.New("flow: stage run out of order")

// DB holds the state of one run.
type DB struct {
	params  *Params
	runID   string
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	tech    *techdb.TechDB
	store   *design.Store
	spacing *techdb.PlacerSpacing
	root    design.CircuitID

	parsed     bool
	classified bool
	report     classify.Report
	results    []*csflow.Result
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger. The run id is attached to it.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(db *DB) { db.metrics = m }
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(db *DB) { db.tracer = tp.Tracer(tracerName) }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(db *DB) { db.runID = id }
}

// New validates p and prepares a run.
func New(p *Params, opts ...Option) (*DB, error) {
	if p == nil {
		return nil, &ParamError{Msg: "no parameters"}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	db := &DB{params: p}
	for _, opt := range opts {
		opt(db)
	}
	if db.runID == "" {
		db.runID = uuid.NewString()
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}
	db.logger = db.logger.With("run_id", db.runID)
	if db.metrics == nil {
		db.metrics = NewMetrics()
	}
	if db.tracer == nil {
		db.tracer = otel.Tracer(tracerName)
	}

	tech, err := techdb.NewTechDB(p.DBU)
	if err != nil {
		return nil, &ParamError{Field: "dbu", Msg: err.Error(), Err: err}
	}
	for i, layer := range p.Layers {
		tech.AddLayer(layer, i)
	}
	db.tech = tech
	return db, nil
}

// RunID identifies the run in logs.
func (db *DB) RunID() string { return db.runID }

// Params returns the validated parameters.
func (db *DB) Params() *Params { return db.params }

// Tech returns the technology lookup.
func (db *DB) Tech() *techdb.TechDB { return db.tech }

// Metrics returns the run metrics.
func (db *DB) Metrics() *Metrics { return db.metrics }

// Store returns the loaded hierarchy, nil before Parse.
func (db *DB) Store() *design.Store { return db.store }

// PlacerSpacing returns the placer spacing document, nil when none was
// configured or before Parse.
func (db *DB) PlacerSpacing() *techdb.PlacerSpacing { return db.spacing }

// Report returns the classification counts of PostProcessing.
func (db *DB) Report() classify.Report { return db.report }

// Results returns the paths of the last ComputeCurrentFlow.
func (db *DB) Results() []*csflow.Result { return db.results }

// TopCircuit returns the root circuit found by Parse.
func (db *DB) TopCircuit() (*design.Circuit, error) {
	if !db.parsed {
		return nil, fmt.Errorf("%w: top circuit requested before parse", ErrStageOrder)
	}
	return db.store.Circuit(db.root), nil
}

// Parse loads the design, resolves the root circuit, then registers the
// optional placer spacing rules. A failure leaves the DB without a design
// and the technology without new rules.
func (db *DB) Parse(ctx context.Context) (err error) {
	ctx, done := db.stage(ctx, "parse")
	defer func() { done(err) }()
	logger := logging.FromContext(ctx)

	store, err := design.LoadFile(db.params.Netlist)
	if err != nil {
		return fmt.Errorf("flow: %w", err)
	}

	root, err := store.FindRoot()
	if err != nil {
		return fmt.Errorf("flow: %s: %w", db.params.Netlist, err)
	}

	// Rules are registered last; a rejected document leaves tech untouched.
	var spacing *techdb.PlacerSpacing
	if db.params.PlacerSpacing != "" {
		spacing, err = techdb.LoadPlacerSpacingFile(db.params.PlacerSpacing, db.tech)
		if err != nil {
			return fmt.Errorf("flow: %w", err)
		}
		db.metrics.SpacingRules.Set(float64(db.tech.NumSameLayerSpacingRules()))
	}

	db.store, db.spacing, db.root, db.parsed = store, spacing, root, true
	db.classified, db.results = false, nil
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("flow.circuits", store.NumCircuits()),
		attribute.String("flow.root", store.Circuit(root).Name()),
	)
	logger.Info("design loaded",
		"netlist", db.params.Netlist,
		"circuits", store.NumCircuits(),
		"root", store.Circuit(root).Name(),
		"spacing_rules", db.tech.NumSameLayerSpacingRules())
	return nil
}

// PostProcessing classifies the nets of every circuit.
func (db *DB) PostProcessing(ctx context.Context) (err error) {
	if !db.parsed {
		return fmt.Errorf("%w: post-processing requires parse", ErrStageOrder)
	}
	ctx, done := db.stage(ctx, "classify")
	defer func() { done(err) }()

	report, err := classify.New(db.params.Names, db.params.Workers).Run(ctx, db.store)
	if err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	db.report, db.classified = report, true

	db.metrics.NetsClassified.WithLabelValues("vdd").Add(float64(report.Vdd))
	db.metrics.NetsClassified.WithLabelValues("vss").Add(float64(report.Vss))
	db.metrics.NetsClassified.WithLabelValues("digital").Add(float64(report.Digital))
	db.metrics.NetsClassified.WithLabelValues("analog").Add(float64(report.Analog))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("flow.nets", report.Nets))
	logging.FromContext(ctx).Info("nets classified",
		"nets", report.Nets,
		"vdd", report.Vdd,
		"vss", report.Vss,
		"digital", report.Digital,
		"analog", report.Analog)
	return nil
}

// ComputeCurrentFlow traces every circuit with an unset implementation and
// writes one <circuit>.sigpath file per circuit into the result directory.
func (db *DB) ComputeCurrentFlow(ctx context.Context) (err error) {
	if !db.classified {
		return fmt.Errorf("%w: current flow requires post-processing", ErrStageOrder)
	}
	ctx, done := db.stage(ctx, "current_flow")
	defer func() { done(err) }()
	logger := logging.FromContext(ctx)

	results, err := csflow.New(db.params.Trace).TraceAll(ctx, db.store)
	if err != nil {
		return fmt.Errorf("flow: %w", err)
	}

	if err := os.MkdirAll(db.params.ResultDir, 0o755); err != nil {
		return fmt.Errorf("flow: result dir: %w", err)
	}
	paths := 0
	for _, res := range results {
		file, err := sigpath.WriteFile(db.params.ResultDir, res)
		if err != nil {
			return fmt.Errorf("flow: %w", err)
		}
		paths += res.NumPaths()
		db.metrics.CircuitsTraced.Inc()
		db.metrics.PathsFound.Add(float64(res.NumPaths()))
		if res.Truncated {
			db.metrics.TruncatedSearches.Inc()
		}
		logger.Debug("wrote current paths", "circuit", res.Circuit, "paths", res.NumPaths(), "file", file)
	}
	db.results = results

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("flow.traced_circuits", len(results)),
		attribute.Int("flow.paths", paths),
	)
	logger.Info("current flow computed",
		"circuits", len(results),
		"paths", paths,
		"result_dir", db.params.ResultDir)
	return nil
}

// Run executes every stage in order.
func (db *DB) Run(ctx context.Context) error {
	if err := db.Parse(ctx); err != nil {
		return err
	}
	if err := db.PostProcessing(ctx); err != nil {
		return err
	}
	return db.ComputeCurrentFlow(ctx)
}

// stage opens a span and carries the run logger for one pipeline stage.
// The returned func records the outcome and must be called once.
func (db *DB) stage(ctx context.Context, name string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := db.tracer.Start(ctx, "flow."+name,
		trace.WithAttributes(attribute.String("flow.run_id", db.runID)))
	logger := db.logger.With("stage", name)
	ctx = logging.WithLogger(ctx, logger)

	return ctx, func(err error) {
		db.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("stage failed", "error", err)
		}
		span.End()
	}
}
