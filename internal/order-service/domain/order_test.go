package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/pkg/apperr"
)

func validRequest() OrderRequest {
	return OrderRequest{
		CustomerID:    "1",
		Products:      []PurchaseLine{{ProductID: 101, Quantity: 2}, {ProductID: 102, Quantity: 1}},
		Amount:        decimal.RequireFromString("59.99"),
		PaymentMethod: "CARD",
		Reference:     "ORD-1",
	}
}

func TestOrderRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(r *OrderRequest)
		ok     bool
	}{
		{name: "valid", mutate: func(*OrderRequest) {}, ok: true},
		{name: "zero_amount", mutate: func(r *OrderRequest) { r.Amount = decimal.Zero }, ok: true},
		{name: "blank_customer", mutate: func(r *OrderRequest) { r.CustomerID = "  " }},
		{name: "no_products", mutate: func(r *OrderRequest) { r.Products = nil }},
		{name: "zero_quantity", mutate: func(r *OrderRequest) { r.Products[1].Quantity = 0 }},
		{name: "missing_product_id", mutate: func(r *OrderRequest) { r.Products[0].ProductID = 0 }},
		{name: "negative_amount", mutate: func(r *OrderRequest) { r.Amount = decimal.NewFromInt(-1) }},
		{name: "missing_payment_method", mutate: func(r *OrderRequest) { r.PaymentMethod = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestNewOrderExcludesLines(t *testing.T) {
	t.Parallel()

	req := validRequest()
	o := NewOrder(req)

	assert.Zero(t, o.ID)
	assert.Equal(t, "ORD-1", o.Reference)
	assert.True(t, o.Amount.Equal(req.Amount))
	assert.Equal(t, PaymentMethod("CARD"), o.PaymentMethod)
	assert.Equal(t, "1", o.CustomerID)
}

func TestOrderRequestValidateAcceptsAnyPaymentMethod(t *testing.T) {
	t.Parallel()

	for _, method := range []PaymentMethod{"CARD", "PAYPAL", "BANK_TRANSFER"} {
		req := validRequest()
		req.PaymentMethod = method
		assert.NoError(t, req.Validate(), method)
	}

	req := validRequest()
	req.PaymentMethod = "  "
	assert.ErrorIs(t, req.Validate(), apperr.ErrValidation)
}
