package provider

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/saradorri/edrewards/internal/domain"
)

// retryOnConnectionError retries a request only when it could not have reached the provider
func retryOnConnectionError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true, nil
	}
	return false, nil
}

// isTimeout reports whether err comes from a deadline rather than a refusal
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNotFound checks if the error is a provider 404
func IsNotFound(err error) bool {
	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.StatusCode == http.StatusNotFound
	}
	return false
}
