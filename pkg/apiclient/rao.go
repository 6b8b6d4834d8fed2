package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/marmos91/dittotape/pkg/batch"
)

// Order posts doc to the server and returns the computed plan.
func (c *Client) Order(ctx context.Context, doc *batch.Document) (*batch.Plan, error) {
	var body bytes.Buffer
	if err := batch.Encode(&body, doc, batch.FormatJSON); err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	var plan batch.Plan
	if err := c.do(ctx, http.MethodPost, "/api/v1/rao", body.Bytes(), "application/json", &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
