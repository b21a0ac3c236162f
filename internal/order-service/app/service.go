// Package app exposes order creation as a use case on top of the coordinator.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/metrics"
)

// CreateOrderResult is returned on success and, partially filled, on failure
// so callers can see which steps ran.
type CreateOrderResult struct {
	OrderID   int64
	Reference string
	RunID     string
	Steps     []coordinator.StepResult
	Warnings  []string
}

type Service struct {
	collab   coordinator.Collaborators
	stepLog  steplog.Repository
	metrics  *metrics.Recorder
	newRunID func() string
}

type Option func(*Service)

func WithStepLog(repo steplog.Repository) Option {
	return func(s *Service) { s.stepLog = repo }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(c coordinator.Collaborators, opts ...Option) *Service {
	s := &Service{
		collab:   c,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates the customer, purchases the products, persists the
// order and its lines, requests payment and publishes the confirmation.
//
// There is no deduplication: two identical requests create two orders.
// Payment and confirmation failures do not fail the call; they are returned
// in Warnings next to the order id.
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderRequest) (CreateOrderResult, error) {
	result := CreateOrderResult{RunID: s.newRunID()}

	if err := req.Validate(); err != nil {
		s.recordRejected(ctx, result.RunID, req, err)
		s.metrics.ObserveRun(apperr.Kind(err))
		return result, err
	}

	slog.InfoContext(ctx, "creating order",
		"run_id", result.RunID,
		"customer_id", req.CustomerID,
		"lines", len(req.Products),
	)

	payload, err := json.Marshal(req)
	if err != nil {
		return result, fmt.Errorf("encode run payload: %w", err)
	}

	run := &coordinator.OrderRun{Request: req}
	orch := coordinator.NewOrchestrator(
		result.RunID,
		coordinator.OrderCreationSteps(run, s.collab),
		coordinator.WithStepLog(s.stepLog),
		coordinator.WithMetrics(s.metrics),
	)

	report, err := orch.Start(ctx, string(payload))
	result.Steps = report.Steps
	if err != nil {
		slog.ErrorContext(ctx, "order creation failed",
			"run_id", result.RunID,
			"kind", apperr.Kind(err),
			"order_id", run.Order.ID,
			"lines_written", len(run.Lines),
			"error", err,
		)
		return result, err
	}

	result.OrderID = run.Order.ID
	result.Reference = run.Order.Reference
	for _, w := range report.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	slog.InfoContext(ctx, "order created",
		"run_id", result.RunID,
		"order_id", result.OrderID,
		"reference", result.Reference,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// recordRejected writes a STARTED/FAILED pair for a request that never
// reached the pipeline, so its run id can still be looked up.
func (s *Service) recordRejected(ctx context.Context, runID string, req domain.OrderRequest, cause error) {
	if s.stepLog == nil {
		return
	}
	payload, _ := json.Marshal(req)
	ctx = context.WithoutCancel(ctx)
	for _, entry := range []*steplog.Entry{
		steplog.NewEntry(ctx, runID, steplog.StatusStarted, "", "", string(payload), nil),
		steplog.NewEntry(ctx, runID, steplog.StatusFailed, coordinator.StepValidateRequest, "", "", []string{cause.Error()}),
	} {
		if err := s.stepLog.Save(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "failed to write step log", "run_id", runID, "status", entry.Status, "error", err)
			return
		}
	}
}

// RunSteps returns the ledger of a run for reconciliation.
func (s *Service) RunSteps(ctx context.Context, runID string) ([]steplog.Entry, error) {
	if s.stepLog == nil {
		return nil, fmt.Errorf("run %s: %w", runID, apperr.ErrNotFound)
	}
	entries, err := s.stepLog.List(ctx, runID)
	if errors.Is(err, steplog.ErrRunNotFound) {
		return nil, fmt.Errorf("run %s: %w", runID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return entries, nil
}
