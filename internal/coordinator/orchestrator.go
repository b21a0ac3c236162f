package coordinator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/metrics"
)

const tracerName = "github.com/jcmexdev/ecommerce-orders/internal/coordinator"

// Step is a single unit of work in a run. Steps have no compensating action:
// once a step has committed its effect, a later failure leaves it in place.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
}

// detailer is implemented by steps that report a short note for the ledger.
type detailer interface {
	Detail() string
}

type bestEffortStep struct {
	Step
}

// BestEffort marks s so that its failure is reported as a warning and the
// run continues with the next step.
func BestEffort(s Step) Step {
	return bestEffortStep{Step: s}
}

func (b bestEffortStep) Detail() string { return detailOf(b.Step) }

func isBestEffort(s Step) bool {
	_, ok := s.(bestEffortStep)
	return ok
}

func detailOf(s Step) string {
	if d, ok := s.(detailer); ok {
		return d.Detail()
	}
	return ""
}

type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepFailed  StepStatus = "failed"
	StepWarned  StepStatus = "warned"
	StepSkipped StepStatus = "skipped"
)

// StepResult is the outcome of one step, in pipeline order.
type StepResult struct {
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	DurationMS int64      `json:"duration_ms"`
	Detail     string     `json:"detail,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Report lists what a run did. Steps always has one entry per planned step.
type Report struct {
	RunID    string
	Steps    []StepResult
	Warnings []error
}

// Orchestrator runs a fixed list of steps strictly in order.
type Orchestrator struct {
	runID   string
	steps   []Step
	log     steplog.Repository // nil-safe: entries are skipped if nil
	metrics *metrics.Recorder  // nil-safe
	tracer  trace.Tracer
}

type Option func(*Orchestrator)

func WithStepLog(repo steplog.Repository) Option {
	return func(o *Orchestrator) { o.log = repo }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

func NewOrchestrator(runID string, steps []Step, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runID:  runID,
		steps:  steps,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start executes the steps sequentially. The first failing step that is not
// best-effort stops the run: its error is returned and the remaining steps
// are reported as skipped. Nothing already done is undone.
func (o *Orchestrator) Start(ctx context.Context, payload string) (Report, error) {
	ctx, span := o.tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("run.id", o.runID),
	))
	defer span.End()

	report := Report{RunID: o.runID, Steps: make([]StepResult, 0, len(o.steps))}
	o.record(ctx, steplog.StatusStarted, "", "", payload, nil)

	for i, step := range o.steps {
		slog.DebugContext(ctx, "executing step", "run_id", o.runID, "step", step.Name())

		res, err := o.execute(ctx, step)
		report.Steps = append(report.Steps, res)

		if err == nil {
			continue
		}
		if isBestEffort(step) {
			report.Warnings = append(report.Warnings, err)
			continue
		}

		for _, rest := range o.steps[i+1:] {
			report.Steps = append(report.Steps, StepResult{Name: rest.Name(), Status: StepSkipped})
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, step.Name())
		o.metrics.ObserveRun(apperr.Kind(err))
		return report, err
	}

	o.record(ctx, steplog.StatusCompleted, "", "", "", nil)
	span.SetStatus(codes.Ok, "")
	if len(report.Warnings) > 0 {
		o.metrics.ObserveRun("warning")
	} else {
		o.metrics.ObserveRun("success")
	}
	return report, nil
}

func (o *Orchestrator) execute(ctx context.Context, step Step) (StepResult, error) {
	ctx, span := o.tracer.Start(ctx, "step."+step.Name(), trace.WithAttributes(
		attribute.String("run.id", o.runID),
		attribute.Bool("step.best_effort", isBestEffort(step)),
	))
	defer span.End()

	start := time.Now()
	err := step.Execute(ctx)
	elapsed := time.Since(start)

	res := StepResult{
		Name:       step.Name(),
		Status:     StepDone,
		DurationMS: elapsed.Milliseconds(),
		Detail:     detailOf(step),
	}

	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
		o.record(ctx, steplog.StatusStepDone, res.Name, res.Detail, "", nil)

	case isBestEffort(step):
		res.Status, res.Error = StepWarned, err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "best-effort step failed")
		slog.WarnContext(ctx, "best-effort step failed, continuing",
			"run_id", o.runID, "step", res.Name, "error", err)
		o.record(ctx, steplog.StatusStepWarn, res.Name, res.Detail, "", []string{err.Error()})

	default:
		res.Status, res.Error = StepFailed, err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "step failed, stopping run",
			"run_id", o.runID, "step", res.Name, "detail", res.Detail, "error", err)
		o.record(ctx, steplog.StatusFailed, res.Name, res.Detail, "", []string{err.Error()})
	}

	o.metrics.ObserveStep(res.Name, string(res.Status), elapsed)
	return res, err
}

// record appends to the ledger. A ledger failure is logged and never fails the run.
func (o *Orchestrator) record(ctx context.Context, status steplog.Status, step, detail, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := steplog.NewEntry(ctx, o.runID, status, step, detail, payload, errs)
	if err := o.log.Save(context.WithoutCancel(ctx), entry); err != nil {
		slog.ErrorContext(ctx, "failed to write step log",
			"run_id", o.runID, "status", status, "step", step, "error", err)
	}
}
