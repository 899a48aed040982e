package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mohamedmnem11/ivita/internal/metrics"
)

// Endpoint is one candidate request target for a logical query. The backend
// routes the same query under different path shapes across environments, so
// callers hand the client an ordered list of shapes they are willing to try.
type Endpoint struct {
	Method string
	Path   string
}

// GET builds a GET endpoint candidate.
func GET(path string) Endpoint {
	return Endpoint{Method: http.MethodGet, Path: path}
}

// TryEndpoints attempts each candidate in order and returns the body of the
// first success. A candidate fails on transport error or a status >= 400;
// each is tried exactly once, with no backoff. When every candidate fails
// the result is a *ResourceUnavailableError carrying only the last failure.
func (c *Client) TryEndpoints(ctx context.Context, query string, candidates []Endpoint) ([]byte, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("api: no endpoint candidates for %s", query)
	}

	var lastErr error
	for _, ep := range candidates {
		method := ep.Method
		if method == "" {
			method = http.MethodGet
		}

		resp, err := c.Do(ctx, method, ep.Path, nil)
		if err != nil {
			metrics.RecordEndpointAttempt(query, false)
			c.log.WithError(err).WithField("path", ep.Path).Debug("endpoint candidate failed")
			lastErr = err
			continue
		}

		body, err := c.ReadBody(resp)
		if err != nil {
			metrics.RecordEndpointAttempt(query, false)
			c.log.WithError(err).WithField("path", ep.Path).Debug("endpoint candidate failed")
			lastErr = err
			continue
		}

		metrics.RecordEndpointAttempt(query, true)
		return body, nil
	}

	metrics.RecordEndpointExhausted(query)
	c.log.WithField("query", query).Warn("all endpoint candidates failed")

	unavailable := &ResourceUnavailableError{Query: query, Err: lastErr}
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) {
		unavailable.Status = apiErr.Status
		unavailable.Message = apiErr.Message
	}
	return nil, unavailable
}
