package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded with status %d", e.StatusCode)
}

// AsStatusError unwraps err into a *StatusError when possible.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// APIClient posts wastage reports to the configured webhook through resty.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client. A zero timeout leaves the transport default in place.
func NewClient(url string, timeout time.Duration) *APIClient {
	restyClient := resty.New().
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		restyClient.SetTimeout(timeout)
	}

	return &APIClient{httpClient: restyClient, url: url}
}

// Submit sends payload as JSON. The response body is only read on failure.
func (c *APIClient) Submit(ctx context.Context, payload any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post wastage report: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}
