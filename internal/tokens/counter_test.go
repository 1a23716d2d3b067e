package tokens_test

import (
	"testing"

	"github.com/furoxr/discord-ai-bot/internal/conversation"
	"github.com/furoxr/discord-ai-bot/internal/tokens"
)

// jargonContext is the OpenAI cookbook counting example: a few-shot prompt
// whose cost under cl100k_base is exactly 126 tokens.
func jargonContext() *conversation.Context {
	return conversation.NewContext().
		AddSystem("You are a helpful, pattern-following assistant that translates corporate jargon into plain English.", "").
		AddSystem("New synergies will help drive top-line growth.", "example_user").
		AddSystem("Things working well together will increase revenue.", "example_assistant").
		AddSystem("Let's circle back when we have more bandwidth to touch base on opportunities for increased leverage.", "example_user").
		AddSystem("Let's talk later when we're less busy about how to do better.", "example_assistant").
		AddUser("This late pivot means we don't have time to boil the ocean for the client deliverable.", "")
}

func newCounter(t *testing.T) *tokens.Counter {
	t.Helper()
	c, err := tokens.NewCounter()
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	return c
}

func TestContextTokens_CookbookExample(t *testing.T) {
	t.Parallel()

	c := newCounter(t)
	if got := c.ContextTokens(jargonContext()); got != 126 {
		t.Errorf("ContextTokens = %d, want 126", got)
	}
}

func TestContextTokens_EmptyContext(t *testing.T) {
	t.Parallel()

	c := newCounter(t)
	// Only the request priming tokens remain.
	if got := c.ContextTokens(conversation.NewContext()); got != 2 {
		t.Errorf("ContextTokens = %d, want 2", got)
	}
}

func TestMessageTokens(t *testing.T) {
	t.Parallel()

	c := newCounter(t)

	plain := conversation.Message{Role: conversation.RoleUser, Content: "hello world"}
	named := conversation.Message{Role: conversation.RoleUser, Content: "hello world", Name: "alice"}

	base := c.MessageTokens(plain)
	want := 4 + c.Count("hello world") + c.Count("user")
	if base != want {
		t.Errorf("MessageTokens = %d, want %d", base, want)
	}

	// A name replaces the role token in the framing, so it costs one
	// token less than its encoded length.
	if got := c.MessageTokens(named); got != base+c.Count("alice")-1 {
		t.Errorf("MessageTokens with name = %d, want %d", got, base+c.Count("alice")-1)
	}
}

func TestMessageTokens_OverheadIsModelIndependent(t *testing.T) {
	t.Parallel()

	c := newCounter(t)
	empty := conversation.Message{Role: conversation.RoleUser}
	// 4 framing tokens plus the role, regardless of target model.
	if got := c.MessageTokens(empty); got != 4+c.Count("user") {
		t.Errorf("MessageTokens = %d, want %d", got, 4+c.Count("user"))
	}
}
