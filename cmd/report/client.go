package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tradejournal/src/analytics"

	"github.com/go-resty/resty/v2"
)

const (
	defaultRetryBaseDelay  = 200 * time.Millisecond
	defaultRetryMaxBackoff = 2 * time.Second
)

// Filters narrows a report the same way the dashboard query string does.
// Empty values are not sent.
type Filters map[string]string

// Client reads dashboard data from a running tradejournal API.
type Client struct {
	http *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func NewClient(config *Config) *Client {
	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

type apiError struct {
	Detail interface{} `json:"detail"`
}

func (c *Client) get(ctx context.Context, path string, filters Filters, out interface{}) error {
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&apiError{})

	for k, v := range filters {
		if v != "" {
			req.SetQueryParam(k, v)
		}
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Detail != nil {
			return fmt.Errorf("GET %s: HTTP %d: %v", path, resp.StatusCode(), e.Detail)
		}
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode())
	}
	return nil
}

func (c *Client) KPIs(ctx context.Context, filters Filters) (*analytics.KPISummary, error) {
	var out analytics.KPISummary
	if err := c.get(ctx, "/api/dashboard/kpis", filters, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccountSummaries(ctx context.Context, filters Filters) ([]analytics.AccountSummary, error) {
	var out []analytics.AccountSummary
	if err := c.get(ctx, "/api/dashboard/accounts", filters, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StrategySummaries(ctx context.Context, filters Filters) ([]analytics.StrategySummary, error) {
	var out []analytics.StrategySummary
	if err := c.get(ctx, "/api/dashboard/strategies", filters, &out); err != nil {
		return nil, err
	}
	return out, nil
}
