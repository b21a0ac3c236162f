package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveRun("success")
	r.ObserveRun("success")
	r.ObserveRun("not_found")
	r.ObserveStep("persist_order", "done", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.steps))
}

func TestNilRecorder(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun("success")
		r.ObserveStep("persist_order", "done", time.Second)
	})
}
