package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/metrics"
)

func okStep(name string, order *[]string) Step {
	return funcStep{name: name, fn: func(context.Context) error {
		*order = append(*order, name)
		return nil
	}}
}

func TestStartRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	repo := steplog.NewMemoryRepository()
	o := NewOrchestrator("run-1", []Step{
		okStep("a", &order),
		okStep("b", &order),
		okStep("c", &order),
	}, WithStepLog(repo))

	report, err := o.Start(context.Background(), "{}")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Steps, 3)
	for _, s := range report.Steps {
		assert.Equal(t, StepDone, s.Status, s.Name)
	}

	entries, err := repo.List(context.Background(), "run-1")
	require.NoError(t, err)
	statuses := make([]steplog.Status, 0, len(entries))
	for _, e := range entries {
		statuses = append(statuses, e.Status)
	}
	assert.Equal(t, []steplog.Status{
		steplog.StatusStarted,
		steplog.StatusStepDone,
		steplog.StatusStepDone,
		steplog.StatusStepDone,
		steplog.StatusCompleted,
	}, statuses)
	assert.Equal(t, "{}", entries[0].Payload)
}

func TestStartStopsAtFirstFailureWithoutCompensation(t *testing.T) {
	t.Parallel()

	var order []string
	boom := errors.New("boom")
	repo := steplog.NewMemoryRepository()
	o := NewOrchestrator("run-2", []Step{
		okStep("a", &order),
		funcStep{name: "b", detail: "lines=1/2", fn: func(context.Context) error { return boom }},
		okStep("c", &order),
	}, WithStepLog(repo))

	report, err := o.Start(context.Background(), "")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"a"}, order)
	require.Len(t, report.Steps, 3)
	assert.Equal(t, StepDone, report.Steps[0].Status)
	assert.Equal(t, StepFailed, report.Steps[1].Status)
	assert.Equal(t, "lines=1/2", report.Steps[1].Detail)
	assert.Equal(t, "boom", report.Steps[1].Error)
	assert.Equal(t, StepSkipped, report.Steps[2].Status)

	entries, err := repo.List(context.Background(), "run-2")
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, steplog.StatusFailed, last.Status)
	assert.Equal(t, "b", last.Step)
	assert.Equal(t, `["boom"]`, last.ErrorMessages)
}

func TestStartContinuesPastBestEffortFailure(t *testing.T) {
	t.Parallel()

	var order []string
	warn := errors.New("payment service down")
	repo := steplog.NewMemoryRepository()
	o := NewOrchestrator("run-3", []Step{
		okStep("a", &order),
		BestEffort(funcStep{name: "b", fn: func(context.Context) error { return warn }}),
		BestEffort(okStep("c", &order)),
	}, WithStepLog(repo))

	report, err := o.Start(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, order)
	require.Len(t, report.Warnings, 1)
	assert.ErrorIs(t, report.Warnings[0], warn)
	assert.Equal(t, StepWarned, report.Steps[1].Status)
	assert.Equal(t, StepDone, report.Steps[2].Status)

	entries, err := repo.List(context.Background(), "run-3")
	require.NoError(t, err)
	assert.Equal(t, steplog.StatusStepWarn, entries[2].Status)
	assert.Equal(t, steplog.StatusCompleted, entries[len(entries)-1].Status)
}

type failingLog struct{}

func (failingLog) Save(context.Context, *steplog.Entry) error { return errors.New("ledger offline") }
func (failingLog) List(context.Context, string) ([]steplog.Entry, error) {
	return nil, steplog.ErrRunNotFound
}

func TestStartIgnoresLedgerFailures(t *testing.T) {
	t.Parallel()

	var order []string
	o := NewOrchestrator("run-4", []Step{okStep("a", &order)}, WithStepLog(failingLog{}))

	_, err := o.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)
}

func TestStartRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var order []string
	ok := NewOrchestrator("run-5", []Step{okStep("a", &order)}, WithMetrics(m))
	_, err := ok.Start(context.Background(), "")
	require.NoError(t, err)

	warned := NewOrchestrator("run-6", []Step{
		BestEffort(funcStep{name: "b", fn: func(context.Context) error { return errors.New("x") }}),
	}, WithMetrics(m))
	_, err = warned.Start(context.Background(), "")
	require.NoError(t, err)

	series, err := testutil.GatherAndCount(reg, "order_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}
