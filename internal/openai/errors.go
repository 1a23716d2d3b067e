package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for API failures.
var (
	// ErrRateLimit indicates the API returned a rate limit response.
	ErrRateLimit = errors.New("openai: rate limited")

	// ErrContextLength indicates the request exceeded the model's context
	// window despite the pre-send shrink.
	ErrContextLength = errors.New("openai: context length exceeded")

	// ErrUnavailable indicates the API is temporarily unreachable.
	ErrUnavailable = errors.New("openai: service unavailable")

	// ErrAuth is a non-retryable authentication error.
	ErrAuth = errors.New("openai: authentication failed")

	// ErrNoChoices indicates the API returned an empty choice list.
	ErrNoChoices = errors.New("openai: no response choices")
)

// apiError is the error envelope returned by the API.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// mapHTTPError maps a status code and response body to a sentinel error.
// Returns nil for 2xx status codes.
func mapHTTPError(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var msg, code string
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
		code = fmt.Sprintf("%v", apiErr.Error.Code)
	} else {
		msg = string(body)
	}

	switch {
	case statusCode == 429:
		return fmt.Errorf("%w: %s", ErrRateLimit, msg)
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%w: %s", ErrAuth, msg)
	case statusCode == 400 && strings.Contains(code+strings.ToLower(msg), "context_length"):
		return fmt.Errorf("%w: %s", ErrContextLength, msg)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return fmt.Errorf("openai: HTTP %d: %s", statusCode, msg)
	}
}

// mapConnectionError maps network-level errors to sentinel errors.
// Context errors pass through unchanged.
func mapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("openai: %w", err)
}
