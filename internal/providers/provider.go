package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Feed adapter boundary rules: every client in this package applies its own
// per-call timeout through the request context, treats non-2xx and non-JSON
// responses as failures, and never lets a transport error escape as anything
// but an error return. Callers decide between fallback data and absence.

// getJSON performs a GET honoring the client's rate limiter and decodes the
// body into dest.
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, headers map[string]string, dest interface{}) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// perMinute builds a client-side limiter from a requests-per-minute budget.
func perMinute(requests int) *rate.Limiter {
	if requests <= 0 {
		requests = 60
	}
	return rate.NewLimiter(rate.Limit(float64(requests)/60.0), requests)
}
