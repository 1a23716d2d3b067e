package tokens

import "github.com/furoxr/discord-ai-bot/internal/conversation"

// Per-message and per-request token overhead of the chat completion API,
// per the tiktoken counting recipe published in the OpenAI cookbook:
// every message carries 4 framing tokens (<|start|>{role}\n{content}<|end|>\n)
// and every request is primed with 2 trailing tokens. A name, when present,
// replaces the role in the framing, saving one token. The overhead is
// applied for every model, not just gpt-3.5-turbo-0301.
const (
	perMessageTokens = 4
	perRequestTokens = 2
)

// MessageTokens returns the counted cost of a single message, framing
// overhead included.
func (c *Counter) MessageTokens(msg conversation.Message) int {
	n := perMessageTokens
	n += c.Count(msg.Content)
	n += c.Count(string(msg.Role))
	if msg.Name != "" {
		n += c.Count(msg.Name) - 1
	}
	return n
}

// ContextTokens returns the counted cost of a whole request context:
// the sum of per-message costs plus the trailing priming tokens.
func (c *Counter) ContextTokens(ctx *conversation.Context) int {
	total := 0
	for _, msg := range ctx.Messages {
		total += c.MessageTokens(msg)
	}
	return total + perRequestTokens
}
