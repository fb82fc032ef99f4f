// Package transport sends JSON requests to the services the pipeline talks
// to: the scraping worker, the filter extractor and extraction services.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	fiber "github.com/gofiber/fiber/v2"
)

// DefaultTimeout is used when neither the context nor the caller sets one
const DefaultTimeout = 30 * time.Second

// Request describes one outbound JSON call
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{}
	Timeout time.Duration
}

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func createAgent(ctx context.Context, req Request) (*fiber.Agent, error) {
	var agent *fiber.Agent
	switch req.Method {
	case http.MethodGet:
		agent = fiber.Get(req.URL)
	case http.MethodPost, "":
		agent = fiber.Post(req.URL)
	case http.MethodPut:
		agent = fiber.Put(req.URL)
	case http.MethodDelete:
		agent = fiber.Delete(req.URL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", req.Method)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	agent.Timeout(timeout)

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")
	for k, v := range req.Headers {
		agent.Set(k, v)
	}
	if req.Body != nil {
		agent.JSON(req.Body)
	}
	return agent, nil
}

// Do sends req and returns the raw response body
func Do(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agent, err := createAgent(ctx, req)
	if err != nil {
		return nil, err
	}

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, &StatusError{Code: statusCode, Body: string(body)}
	}
	return body, nil
}

// PostJSON posts body to url and decodes the response into out when out is non-nil
func PostJSON(ctx context.Context, url string, headers map[string]string, body, out interface{}) error {
	raw, err := Do(ctx, Request{Method: http.MethodPost, URL: url, Headers: headers, Body: body})
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
