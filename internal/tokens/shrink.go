package tokens

import "github.com/furoxr/discord-ai-bot/internal/conversation"

// Shrink trims ctx in place until its counted cost fits limit.
//
// The first message (the steering system message) and the last message
// (the just-asked question) are protected and never removed. Interior
// messages are removed strictly left to right starting at index 1 — the
// oldest, least relevant part of the dialogue — each removal subtracting
// that message's full counted cost from the running total. Removal stops
// the instant the total fits; the algorithm never removes more than
// necessary.
//
// Failure modes leave ctx untouched: ErrTooShortToShrink when the
// conversation is over limit with two or fewer messages, and
// ErrCannotShrink when removing every interior message still cannot meet
// the limit. Neither is worth retrying with the same input.
func (c *Counter) Shrink(ctx *conversation.Context, limit int) error {
	costs := make([]int, len(ctx.Messages))
	total := perRequestTokens
	for i, msg := range ctx.Messages {
		costs[i] = c.MessageTokens(msg)
		total += costs[i]
	}

	if total <= limit {
		return nil
	}
	if len(ctx.Messages) <= 2 {
		return ErrTooShortToShrink
	}

	removed := 0
	for i := 1; i < len(ctx.Messages)-1; i++ {
		total -= costs[i]
		removed++
		if total <= limit {
			break
		}
	}
	if total > limit {
		return ErrCannotShrink
	}

	ctx.Messages = append(ctx.Messages[:1], ctx.Messages[1+removed:]...)
	return nil
}
