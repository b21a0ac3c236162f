package steplog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewEntryWithoutSpan(t *testing.T) {
	t.Parallel()

	e := NewEntry(context.Background(), "run-1", StatusStarted, "", "", `{"customerId":"1"}`, nil)

	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, StatusStarted, e.Status)
	assert.Equal(t, "[]", e.ErrorMessages)
	assert.Empty(t, e.TraceID)
	assert.Empty(t, e.SpanID)
	assert.False(t, e.UpdatedAt.IsZero())
}

func TestNewEntryWithSpan(t *testing.T) {
	t.Parallel()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	e := NewEntry(ctx, "run-2", StatusFailed, "persist_order", "", "", []string{"disk full"})

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", e.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", e.SpanID)
	assert.Equal(t, `["disk full"]`, e.ErrorMessages)
}

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.List(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	require.NoError(t, repo.Save(ctx, NewEntry(ctx, "run-1", StatusStarted, "", "", "", nil)))
	require.NoError(t, repo.Save(ctx, NewEntry(ctx, "run-1", StatusStepDone, "validate_customer", "", "", nil)))
	require.NoError(t, repo.Save(ctx, nil))

	entries, err := repo.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusStarted, entries[0].Status)
	assert.Equal(t, "validate_customer", entries[1].Step)
}

func TestEntryErrors(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, NewEntry(ctx, "r", StatusStepDone, "s", "", "", nil).Errors())
	assert.Equal(t, []string{"a", "b"}, NewEntry(ctx, "r", StatusFailed, "s", "", "", []string{"a", "b"}).Errors())
	assert.Equal(t, []string{"not json"}, Entry{ErrorMessages: "not json"}.Errors())
}
