package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/apperr"
)

const (
	// StepValidateRequest is recorded only for requests rejected before the pipeline starts.
	StepValidateRequest = "validate_request"

	StepValidateCustomer    = "validate_customer"
	StepPurchaseProducts    = "purchase_products"
	StepPersistOrder        = "persist_order"
	StepPersistOrderLines   = "persist_order_lines"
	StepRequestPayment      = "request_payment"
	StepPublishConfirmation = "publish_confirmation"
)

// OrderRun is the state handed from one order-creation step to the next.
type OrderRun struct {
	Request   domain.OrderRequest
	Customer  domain.Customer
	Purchased []domain.PurchaseResult
	Order     domain.Order
	Lines     []domain.OrderLine
}

// Collaborators are the services an order-creation run talks to.
type Collaborators struct {
	Customers     ports.CustomerDirectory
	Products      ports.ProductPurchaser
	Orders        ports.OrderStore
	Payments      ports.PaymentInitiator
	Confirmations ports.ConfirmationPublisher

	// CallTimeout bounds every outbound call. Zero means no bound.
	CallTimeout time.Duration
}

// OrderCreationSteps returns the fixed pipeline:
// validate → purchase → persist header → persist lines → payment → confirmation.
// Payment and confirmation are best-effort once the order is persisted.
func OrderCreationSteps(run *OrderRun, c Collaborators) []Step {
	return []Step{
		&ValidateCustomerStep{run: run, client: c.Customers, timeout: c.CallTimeout},
		&PurchaseProductsStep{run: run, client: c.Products, timeout: c.CallTimeout},
		&PersistOrderStep{run: run, store: c.Orders, timeout: c.CallTimeout},
		&PersistOrderLinesStep{run: run, store: c.Orders, timeout: c.CallTimeout},
		BestEffort(&RequestPaymentStep{run: run, client: c.Payments, timeout: c.CallTimeout}),
		BestEffort(&PublishConfirmationStep{run: run, publisher: c.Confirmations, timeout: c.CallTimeout}),
	}
}

func callContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// --- ValidateCustomerStep ---

type ValidateCustomerStep struct {
	run     *OrderRun
	client  ports.CustomerDirectory
	timeout time.Duration
}

func (s *ValidateCustomerStep) Name() string { return StepValidateCustomer }

func (s *ValidateCustomerStep) Execute(ctx context.Context) error {
	id := s.run.Request.CustomerID

	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	customer, found, err := s.client.FindCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: customer lookup for %s: %w", apperr.ErrBusinessRule, id, err)
	}
	if !found {
		return fmt.Errorf("%w: %w: cannot create order: no customer exists with id %s",
			apperr.ErrBusinessRule, apperr.ErrNotFound, id)
	}
	s.run.Customer = customer
	return nil
}

// --- PurchaseProductsStep ---

type PurchaseProductsStep struct {
	run     *OrderRun
	client  ports.ProductPurchaser
	timeout time.Duration
}

func (s *PurchaseProductsStep) Name() string { return StepPurchaseProducts }

func (s *PurchaseProductsStep) Detail() string {
	return fmt.Sprintf("products=%d/%d", len(s.run.Purchased), len(s.run.Request.Products))
}

func (s *PurchaseProductsStep) Execute(ctx context.Context) error {
	lines := s.run.Request.Products

	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	results, err := s.client.Purchase(ctx, lines)
	if err != nil {
		return fmt.Errorf("%w: product purchase: %w", apperr.ErrBusinessRule, err)
	}
	// Partial outcomes are not inspected; a short answer is a failed purchase.
	if len(results) != len(lines) {
		return fmt.Errorf("%w: product purchase returned %d results for %d lines",
			apperr.ErrBusinessRule, len(results), len(lines))
	}
	s.run.Purchased = results
	return nil
}

// --- PersistOrderStep ---

type PersistOrderStep struct {
	run     *OrderRun
	store   ports.OrderStore
	timeout time.Duration
}

func (s *PersistOrderStep) Name() string { return StepPersistOrder }

func (s *PersistOrderStep) Detail() string {
	if s.run.Order.ID == 0 {
		return ""
	}
	return fmt.Sprintf("order_id=%d", s.run.Order.ID)
}

func (s *PersistOrderStep) Execute(ctx context.Context) error {
	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	saved, err := s.store.SaveOrder(ctx, domain.NewOrder(s.run.Request))
	if err != nil {
		return fmt.Errorf("%w: save order: %w", apperr.ErrPersistence, err)
	}
	if saved.ID == 0 {
		return fmt.Errorf("%w: save order: store assigned no id", apperr.ErrPersistence)
	}
	s.run.Order = saved
	return nil
}

// --- PersistOrderLinesStep ---

// LineWriteError reports a line write that failed after Written lines of
// Total had already been stored for OrderID. Those lines are not removed.
type LineWriteError struct {
	OrderID int64
	Written int
	Total   int
	Err     error
}

func (e *LineWriteError) Error() string {
	return fmt.Sprintf("save order line %d of %d for order %d: %v", e.Written+1, e.Total, e.OrderID, e.Err)
}

func (e *LineWriteError) Unwrap() []error {
	return []error{apperr.ErrPersistence, e.Err}
}

type PersistOrderLinesStep struct {
	run     *OrderRun
	store   ports.OrderStore
	timeout time.Duration
}

func (s *PersistOrderLinesStep) Name() string { return StepPersistOrderLines }

func (s *PersistOrderLinesStep) Detail() string {
	return fmt.Sprintf("lines=%d/%d", len(s.run.Lines), len(s.run.Request.Products))
}

// Execute writes one line per requested product, in request order. Each write
// is its own call with its own timeout.
func (s *PersistOrderLinesStep) Execute(ctx context.Context) error {
	products := s.run.Request.Products
	s.run.Lines = make([]domain.OrderLine, 0, len(products))

	for _, p := range products {
		saved, err := s.saveLine(ctx, domain.OrderLine{
			OrderID:   s.run.Order.ID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
		if err != nil {
			return &LineWriteError{
				OrderID: s.run.Order.ID,
				Written: len(s.run.Lines),
				Total:   len(products),
				Err:     err,
			}
		}
		s.run.Lines = append(s.run.Lines, saved)
	}
	return nil
}

func (s *PersistOrderLinesStep) saveLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()
	return s.store.SaveOrderLine(ctx, line)
}

// --- RequestPaymentStep ---

type RequestPaymentStep struct {
	run     *OrderRun
	client  ports.PaymentInitiator
	timeout time.Duration
}

func (s *RequestPaymentStep) Name() string { return StepRequestPayment }

func (s *RequestPaymentStep) Execute(ctx context.Context) error {
	req := domain.PaymentRequest{
		Amount:         s.run.Request.Amount,
		PaymentMethod:  s.run.Request.PaymentMethod,
		OrderID:        s.run.Order.ID,
		OrderReference: s.run.Order.Reference,
		Customer:       s.run.Customer,
	}

	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	if err := s.client.RequestPayment(ctx, req); err != nil {
		return fmt.Errorf("%w: payment request for order %d: %w", apperr.ErrDownstream, req.OrderID, err)
	}
	return nil
}

// --- PublishConfirmationStep ---

type PublishConfirmationStep struct {
	run       *OrderRun
	publisher ports.ConfirmationPublisher
	timeout   time.Duration
}

func (s *PublishConfirmationStep) Name() string { return StepPublishConfirmation }

func (s *PublishConfirmationStep) Execute(ctx context.Context) error {
	// The confirmation carries the caller's reference; the assigned one only
	// stands in when the caller sent none.
	ref := s.run.Request.Reference
	if ref == "" {
		ref = s.run.Order.Reference
	}

	c := domain.OrderConfirmation{
		OrderReference: ref,
		TotalAmount:    s.run.Request.Amount,
		PaymentMethod:  s.run.Request.PaymentMethod,
		Customer:       s.run.Customer,
		Products:       s.run.Purchased,
	}

	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	if err := s.publisher.PublishConfirmation(ctx, c); err != nil {
		return fmt.Errorf("%w: publish confirmation %s: %w", apperr.ErrDownstream, ref, err)
	}
	return nil
}
