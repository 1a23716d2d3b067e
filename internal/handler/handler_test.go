package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/furoxr/discord-ai-bot/internal/conversation"
	"github.com/furoxr/discord-ai-bot/internal/handler"
	"github.com/furoxr/discord-ai-bot/internal/knowledge"
	"github.com/furoxr/discord-ai-bot/internal/tokens"
)

type fakeCompleter struct {
	reply string
	err   error
	got   *conversation.Context
}

func (f *fakeCompleter) Complete(_ context.Context, cc *conversation.Context) (string, error) {
	f.got = cc.Clone()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSearcher struct {
	hit *knowledge.Hit
	err error
}

func (f *fakeSearcher) Lookup(context.Context, string) (*knowledge.Hit, error) {
	return f.hit, f.err
}

func newHandler(t *testing.T, cfg handler.Config, completer handler.Completer, searcher handler.Searcher) (*handler.Handler, *conversation.Cache) {
	t.Helper()
	cache, err := conversation.NewCache(0, 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	counter, err := tokens.NewCounter()
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.New(cfg, cache, counter, completer, searcher, logger, nil), cache
}

func TestRespond(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "the answer"}
	h, cache := newHandler(t, handler.Config{SystemPrompt: "Be brief."}, completer, nil)

	reply, err := h.Respond(context.Background(), "u1", "what is up")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != "the answer" {
		t.Errorf("reply = %q", reply)
	}

	// The request context is system prompt, history (empty), question.
	if completer.got.Len() != 2 {
		t.Fatalf("request Len() = %d, want 2", completer.got.Len())
	}
	if completer.got.Messages[0].Role != conversation.RoleSystem || completer.got.Messages[0].Content != "Be brief." {
		t.Errorf("message[0] = %+v", completer.got.Messages[0])
	}
	if completer.got.Messages[1].Role != conversation.RoleUser || completer.got.Messages[1].Content != "what is up" {
		t.Errorf("message[1] = %+v", completer.got.Messages[1])
	}

	// Both turns were remembered.
	hist, err := cache.Messages("u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if hist.Len() != 2 {
		t.Fatalf("history Len() = %d, want 2", hist.Len())
	}
	if hist.Messages[0].Content != "what is up" || hist.Messages[1].Content != "the answer" {
		t.Errorf("history = %+v", hist.Messages)
	}
}

func TestRespond_HistoryPrecedesQuestion(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "second answer"}
	h, cache := newHandler(t, handler.Config{}, completer, nil)

	if err := cache.AddMessage("u1", conversation.RoleUser, "first question", ""); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if err := cache.AddMessage("u1", conversation.RoleAssistant, "first answer", ""); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	if _, err := h.Respond(context.Background(), "u1", "second question"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	want := []string{"first question", "first answer", "second question"}
	if completer.got.Len() != 4 {
		t.Fatalf("request Len() = %d, want 4", completer.got.Len())
	}
	for i, content := range want {
		if completer.got.Messages[i+1].Content != content {
			t.Errorf("message[%d] = %q, want %q", i+1, completer.got.Messages[i+1].Content, content)
		}
	}
}

func TestRespond_KnowledgeAugmentation(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "ok"}
	searcher := &fakeSearcher{hit: &knowledge.Hit{
		Payload: knowledge.Payload{Title: "release", Content: "ships on Friday"},
		Score:   0.93,
	}}
	h, cache := newHandler(t, handler.Config{}, completer, searcher)

	if _, err := h.Respond(context.Background(), "u1", "when do we ship"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	last := completer.got.Messages[completer.got.Len()-1]
	if !strings.Contains(last.Content, "Question: when do we ship") ||
		!strings.Contains(last.Content, "Knowledge: ships on Friday") {
		t.Errorf("augmented content = %q", last.Content)
	}

	// The cache remembers the raw question, not the augmented form.
	hist, err := cache.Messages("u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if hist.Messages[0].Content != "when do we ship" {
		t.Errorf("cached question = %q", hist.Messages[0].Content)
	}
}

func TestRespond_KnowledgeLookupFailureDegrades(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "ok"}
	searcher := &fakeSearcher{err: errors.New("qdrant down")}
	h, _ := newHandler(t, handler.Config{}, completer, searcher)

	if _, err := h.Respond(context.Background(), "u1", "hello"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	last := completer.got.Messages[completer.got.Len()-1]
	if last.Content != "hello" {
		t.Errorf("content = %q, want plain question", last.Content)
	}
}

func TestRespond_CompletionFailureNotCached(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{err: errors.New("api down")}
	h, cache := newHandler(t, handler.Config{}, completer, nil)

	if _, err := h.Respond(context.Background(), "u1", "hello"); err == nil {
		t.Fatal("Respond = nil, want error")
	}

	hist, err := cache.Messages("u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if hist.Len() != 0 {
		t.Errorf("history Len() = %d after failed completion, want 0", hist.Len())
	}
}

func TestRespond_ShrinksOverBudget(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "ok"}
	// Budget large enough for system prompt and question but not the
	// whole history, forcing interior removal.
	h, cache := newHandler(t, handler.Config{SystemPrompt: "Be brief.", TokenBudget: 60}, completer, nil)

	for i := 0; i < 6; i++ {
		if err := cache.AddMessage("u1", conversation.RoleUser, "an old message that takes up room in the window", ""); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	if _, err := h.Respond(context.Background(), "u1", "new question"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if completer.got.Len() >= 8 {
		t.Errorf("request Len() = %d, want shrunk below 8", completer.got.Len())
	}
	first := completer.got.Messages[0]
	last := completer.got.Messages[completer.got.Len()-1]
	if first.Content != "Be brief." {
		t.Errorf("system prompt removed, message[0] = %+v", first)
	}
	if last.Content != "new question" {
		t.Errorf("question removed, last = %+v", last)
	}
}

func TestRespond_TooLongToShrink(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "ok"}
	h, _ := newHandler(t, handler.Config{TokenBudget: 10}, completer, nil)

	question := strings.Repeat("a very long question indeed ", 20)
	_, err := h.Respond(context.Background(), "u1", question)
	if !errors.Is(err, tokens.ErrTooShortToShrink) {
		t.Fatalf("Respond = %v, want ErrTooShortToShrink", err)
	}
	if completer.got != nil {
		t.Error("completion was attempted despite budget failure")
	}
}

func TestFallbackText(t *testing.T) {
	t.Parallel()

	if got := handler.FallbackText(tokens.ErrCannotShrink); got == "" {
		t.Error("FallbackText(ErrCannotShrink) = empty")
	}
	if got := handler.FallbackText(tokens.ErrTooShortToShrink); got == "" {
		t.Error("FallbackText(ErrTooShortToShrink) = empty")
	}
	if got := handler.FallbackText(errors.New("other")); got != "" {
		t.Errorf("FallbackText(other) = %q, want empty", got)
	}
}
