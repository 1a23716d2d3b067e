// Package tokens reproduces the chat completion API's token accounting
// and shrinks conversations to fit a model's context window.
package tokens

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// encoding is the BPE vocabulary shared by the gpt-3.5/gpt-4 family and
// the ada embedding models.
const encoding = "cl100k_base"

// allowAllSpecial makes Encode treat special tokens as ordinary allowed
// input, matching tiktoken's encode_with_special_tokens.
var allowAllSpecial = []string{"all"}

// Counter counts tokens with an exact BPE tokenizer and applies the
// chat API's per-message overhead model.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter loads the cl100k_base vocabulary. Failure to load is fatal
// for the whole system: without the vocabulary no request cost can be
// bounded, so callers should abort startup.
func NewCounter() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenizerInit, err)
	}
	return &Counter{enc: enc}, nil
}

// Count returns the exact BPE token count of text.
func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, allowAllSpecial, nil))
}
