// Package apperr defines the error categories surfaced by order creation and
// maps them to kinds and HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrValidation marks a request that violates the create-order preconditions.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a referenced customer, order or run that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBusinessRule marks a violated domain precondition: unknown customer,
	// failed purchase, or an unreachable collaborator before anything was persisted.
	ErrBusinessRule = errors.New("business rule violation")
	// ErrPersistence marks a failed write of an order or an order line.
	ErrPersistence = errors.New("persistence failure")
	// ErrDownstream marks a rejected or unreachable payment request or confirmation publish.
	ErrDownstream = errors.New("downstream notification failure")
)

// Kind classifies err. Not-found wins over business-rule so a missing
// customer is reported as not_found even though it is both.
//
// A business-rule failure caused by a deadline is reported as timeout (504)
// rather than business_rule. The error still wraps ErrBusinessRule, so
// errors.Is keeps the collaborator's category; only the reported kind differs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return "validation"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrBusinessRule):
		if errors.Is(err, context.DeadlineExceeded) {
			return "timeout"
		}
		return "business_rule"

	case errors.Is(err, ErrPersistence):
		return "persistence"

	case errors.Is(err, ErrDownstream):
		return "downstream"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK

	case "validation", "canceled":
		return http.StatusBadRequest

	case "not_found":
		return http.StatusNotFound

	case "business_rule":
		return http.StatusUnprocessableEntity

	case "downstream":
		return http.StatusBadGateway

	case "timeout":
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
