package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

var _ ports.CustomerDirectory = (*CustomerClient)(nil)

// CustomerClient looks customers up with GET {baseURL}/{id}.
type CustomerClient struct {
	baseURL string
	http    *http.Client
}

func NewCustomerClient(baseURL string, hc *http.Client) *CustomerClient {
	return &CustomerClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// FindCustomer reports found=false on 404.
func (c *CustomerClient) FindCustomer(ctx context.Context, id string) (domain.Customer, bool, error) {
	var customer domain.Customer
	err := doJSON(ctx, c.http, "customer-service", http.MethodGet, c.baseURL+"/"+url.PathEscape(id), nil, &customer)

	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		return domain.Customer{}, false, nil
	case err != nil:
		return domain.Customer{}, false, err
	}
	return customer, true, nil
}
