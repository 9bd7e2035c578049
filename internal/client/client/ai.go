package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
)

// Generate asks the AI endpoint to summarize or proofread text. The whole
// answer arrives at once.
func (c *HTTPClient) Generate(ctx context.Context, text string, mode models.AIMode) (string, error) {
	var resp struct {
		Result string `json:"result"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/ai/generate",
		body:   map[string]string{"text": text, "mode": string(mode)},
		auth:   true,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("ai generate: %w", err)
	}
	return resp.Result, nil
}
