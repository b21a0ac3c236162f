package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

var _ ports.ProductPurchaser = (*ProductClient)(nil)

// ProductClient purchases products with POST {baseURL}/purchase.
type ProductClient struct {
	baseURL string
	http    *http.Client
}

func NewProductClient(baseURL string, hc *http.Client) *ProductClient {
	return &ProductClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *ProductClient) Purchase(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	var results []domain.PurchaseResult
	if err := doJSON(ctx, c.http, "product-service", http.MethodPost, c.baseURL+"/purchase", lines, &results); err != nil {
		return nil, fmt.Errorf("an error occurred while processing the product purchase: %w", err)
	}
	return results, nil
}
