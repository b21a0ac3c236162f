package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/pkg/apperr"
)

// PaymentMethod is passed through to the payment service, which owns the
// set of accepted values.
type PaymentMethod string

// OrderRequest is the caller-supplied input of a create-order run.
type OrderRequest struct {
	CustomerID    string          `json:"customerId"`
	Products      []PurchaseLine  `json:"products"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Reference     string          `json:"reference"`
}

// Validate checks the preconditions that must hold before any collaborator is called.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return fmt.Errorf("%w: customer id is required", apperr.ErrValidation)
	}
	if len(r.Products) == 0 {
		return fmt.Errorf("%w: at least one product is required", apperr.ErrValidation)
	}
	for i, p := range r.Products {
		if p.ProductID <= 0 {
			return fmt.Errorf("%w: product %d: product id is required", apperr.ErrValidation, i)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("%w: product %d: quantity must be positive", apperr.ErrValidation, i)
		}
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", apperr.ErrValidation)
	}
	if strings.TrimSpace(string(r.PaymentMethod)) == "" {
		return fmt.Errorf("%w: payment method is required", apperr.ErrValidation)
	}
	return nil
}

// Customer is owned by the customer directory and only referenced here.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// PurchaseLine asks the inventory for a quantity of one product.
type PurchaseLine struct {
	ProductID int64   `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// PurchaseResult is the inventory's confirmation for one PurchaseLine.
type PurchaseResult struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    float64         `json:"quantity"`
}

// Order is the persisted order header. ID is assigned by the store.
type Order struct {
	ID            int64
	Reference     string
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	CustomerID    string
	CreatedAt     time.Time
}

// NewOrder builds an unsaved order header from the request, excluding the product lines.
func NewOrder(r OrderRequest) Order {
	return Order{
		Reference:     r.Reference,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		CustomerID:    r.CustomerID,
	}
}

// OrderLine is one product/quantity entry of a persisted order.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  float64
}

type PaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	OrderID        int64           `json:"orderId"`
	OrderReference string          `json:"orderReference"`
	Customer       Customer        `json:"customer"`
}

// OrderConfirmation is the event published once an order has been created.
type OrderConfirmation struct {
	OrderReference string           `json:"orderReference"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	Customer       Customer         `json:"customer"`
	Products       []PurchaseResult `json:"products"`
}
