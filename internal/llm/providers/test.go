package providers

import (
	"context"
	"fmt"
	"sync"
)

// TestClient is a scripted backend for offline runs and tests. Each
// call pops the next scripted result; with no script it echoes the
// request so output stays deterministic.
type TestClient struct {
	mu       sync.Mutex
	results  []scripted
	requests []Request
}

type scripted struct {
	text string
	err  error
}

// NewTest creates an unscripted test backend.
func NewTest() *TestClient {
	return &TestClient{}
}

func (c *TestClient) Name() string { return "Test" }

// Reply queues a successful response.
func (c *TestClient) Reply(text string) *TestClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, scripted{text: text})
	return c
}

// Fail queues a failed response.
func (c *TestClient) Fail(err error) *TestClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, scripted{err: err})
	return c
}

// Requests returns every request received, in order.
func (c *TestClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

func (c *TestClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	if len(c.results) == 0 {
		return fmt.Sprintf("Test response from model %q. System prompt: %q, User prompt: %q",
			req.Model, req.System, req.User), nil
	}
	next := c.results[0]
	c.results = c.results[1:]
	if next.err != nil {
		return "", next.err
	}
	return next.text, nil
}
