package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/furoxr/discord-ai-bot/internal/conversation"
)

var tracer = otel.Tracer("github.com/furoxr/discord-ai-bot/internal/openai")

// chatRequest is the wire format of a chat completion request.
type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []conversation.Message `json:"messages"`
}

// chatResponse is the subset of the completion response the bot uses.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends the context to the chat completion endpoint and returns
// the assistant's reply. The caller is responsible for having fit the
// context under the model's token budget first.
func (c *Client) Complete(ctx context.Context, cc *conversation.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "openai.complete", trace.WithAttributes(
		attribute.String("openai.model", c.config.Model),
		attribute.Int("openai.messages", cc.Len()),
	))
	defer span.End()

	body, statusCode, err := c.doPost(ctx, "/chat/completions", chatRequest{
		Model:    c.config.Model,
		Messages: cc.Messages,
	})
	if err != nil {
		return "", err
	}
	if httpErr := mapHTTPError(statusCode, body); httpErr != nil {
		return "", httpErr
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}
