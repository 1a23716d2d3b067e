package tokens

import "errors"

// Sentinel errors for token counting and conversation shrinking.
var (
	// ErrTokenizerInit indicates the BPE vocabulary could not be loaded.
	// Fatal at startup, not per-call.
	ErrTokenizerInit = errors.New("tokens: tokenizer initialization failed")

	// ErrTooShortToShrink indicates the conversation has two or fewer
	// messages, leaving no interior message to remove once the protected
	// first and last messages are excluded.
	ErrTooShortToShrink = errors.New("tokens: conversation too short to shrink")

	// ErrCannotShrink indicates that even removing every interior message
	// cannot bring the conversation under the limit.
	ErrCannotShrink = errors.New("tokens: conversation cannot be shrunk under the limit")
)
