package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/app"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/interceptors"
)

const maxBodyBytes = 1 << 20

// OrderService is the use case behind the handler; *app.Service satisfies it.
type OrderService interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (app.CreateOrderResult, error)
	RunSteps(ctx context.Context, runID string) ([]steplog.Entry, error)
}

// Pinger is a dependency checked by /healthz, such as the order database.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	orders OrderService
	deps   []Pinger
}

func NewHandler(orders OrderService, deps ...Pinger) *Handler {
	return &Handler{orders: orders, deps: deps}
}

// CreateOrder runs the whole pipeline synchronously and answers with the
// persisted order id, or with the error kind and the steps that ran.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	slog.InfoContext(r.Context(), "create order request",
		"request_id", interceptors.RequestID(r.Context()),
		"customer_id", req.CustomerID,
	)

	result, err := h.orders.CreateOrder(r.Context(), req.toDomain())
	if err != nil {
		writeJSON(w, apperr.HTTPStatus(err), ErrorResponse{
			Error: ErrorBody{Kind: apperr.Kind(err), Message: err.Error()},
			RunID: result.RunID,
			Steps: result.Steps,
		})
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		OrderID:   result.OrderID,
		Reference: result.Reference,
		RunID:     result.RunID,
		Steps:     result.Steps,
		Warnings:  result.Warnings,
	})
}

// GetRun returns the step ledger of one run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run_id_required", "")
		return
	}

	entries, err := h.orders.RunSteps(r.Context(), runID)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if !errors.Is(err, apperr.ErrNotFound) {
			slog.ErrorContext(r.Context(), "read step log failed", "run_id", runID, "error", err)
		}
		writeError(w, status, apperr.Kind(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapRunToResponse(runID, entries))
}

// Healthz answers 503 when any dependency fails its ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	for _, dep := range h.deps {
		if err := dep.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorBody{Kind: kind, Message: msg},
	})
}
