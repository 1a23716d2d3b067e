package openai

import (
	"context"
	"encoding/json"
	"fmt"
)

// embeddingRequest is the wire format of an embedding request.
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns the embedding vector for text using the configured
// embedding model (1536 dimensions for text-embedding-ada-002).
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, statusCode, err := c.doPost(ctx, "/embeddings", embeddingRequest{
		Model: c.config.EmbeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, err
	}
	if httpErr := mapHTTPError(statusCode, body); httpErr != nil {
		return nil, httpErr
	}

	var resp embeddingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai: empty embedding response")
	}
	return resp.Data[len(resp.Data)-1].Embedding, nil
}
