package apiclient

import (
	"context"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ready checks that the server can plan, catalogue included. An unready
// server returns an APIError with status 503.
func (c *Client) Ready(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/health/ready", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
