package clients

import (
	"context"
	"net/http"
	"strings"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

var _ ports.PaymentInitiator = (*PaymentClient)(nil)

// PaymentClient posts payment requests to {baseURL}. The response body (the
// payment id) is not used; acceptance is all the order flow needs.
type PaymentClient struct {
	baseURL string
	http    *http.Client
}

func NewPaymentClient(baseURL string, hc *http.Client) *PaymentClient {
	return &PaymentClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *PaymentClient) RequestPayment(ctx context.Context, req domain.PaymentRequest) error {
	return doJSON(ctx, c.http, "payment-service", http.MethodPost, c.baseURL, req, nil)
}
