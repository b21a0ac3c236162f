package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/steplog"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

type CreateOrderRequest struct {
	CustomerID    string               `json:"customer_id"`
	Products      []CreateOrderItemDTO `json:"products"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod string               `json:"payment_method"`
	Reference     string               `json:"reference"`
}

type CreateOrderItemDTO struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

func (r CreateOrderRequest) toDomain() domain.OrderRequest {
	lines := make([]domain.PurchaseLine, len(r.Products))
	for i, p := range r.Products {
		lines[i] = domain.PurchaseLine{ProductID: p.ProductID, Quantity: p.Quantity}
	}
	return domain.OrderRequest{
		CustomerID:    r.CustomerID,
		Products:      lines,
		Amount:        r.Amount,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Reference:     r.Reference,
	}
}

type CreateOrderResponse struct {
	OrderID   int64                    `json:"order_id"`
	Reference string                   `json:"reference"`
	RunID     string                   `json:"run_id"`
	Steps     []coordinator.StepResult `json:"steps"`
	Warnings  []string                 `json:"warnings,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody                `json:"error"`
	RunID string                   `json:"run_id,omitempty"`
	Steps []coordinator.StepResult `json:"steps,omitempty"`
}

type StepLogEntryResponse struct {
	Status    string    `json:"status"`
	Step      string    `json:"step,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RunResponse struct {
	RunID   string                 `json:"run_id"`
	Payload string                 `json:"payload,omitempty"`
	Entries []StepLogEntryResponse `json:"entries"`
}

func mapRunToResponse(runID string, entries []steplog.Entry) RunResponse {
	out := RunResponse{RunID: runID, Entries: make([]StepLogEntryResponse, len(entries))}
	for i, e := range entries {
		if e.Payload != "" {
			out.Payload = e.Payload
		}
		out.Entries[i] = StepLogEntryResponse{
			Status:    string(e.Status),
			Step:      e.Step,
			Detail:    e.Detail,
			Errors:    e.Errors(),
			TraceID:   e.TraceID,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return out
}
