package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxMessageLength is Discord's per-message content limit.
const maxMessageLength = 2000

// restClient issues Discord REST API calls.
type restClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newRESTClient(cfg Config) *restClient {
	return &restClient{
		baseURL: cfg.APIURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// createMessageRequest is the wire format of a message create call.
type createMessageRequest struct {
	Content          string            `json:"content"`
	MessageReference *messageReference `json:"message_reference,omitempty"`
}

type messageReference struct {
	MessageID string `json:"message_id"`
}

// createMessage posts content to a channel, optionally as a reply to
// replyToID.
func (r *restClient) createMessage(ctx context.Context, channelID, content, replyToID string) error {
	req := createMessageRequest{Content: content}
	if replyToID != "" {
		req.MessageReference = &messageReference{MessageID: replyToID}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("discord: marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", r.baseURL, channelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bot "+r.token)

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord: send message: HTTP %d: %s", resp.StatusCode, raw)
	}
	return nil
}
