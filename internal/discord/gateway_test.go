package discord

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// fakeGateway serves one scripted gateway session: hello, identify check,
// READY, then one MESSAGE_CREATE.
func fakeGateway(t *testing.T, gotIdentify chan<- identify) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.CloseNow() }()
		ctx := r.Context()

		err = wsjson.Write(ctx, conn, map[string]any{
			"op": opHello,
			"d":  map[string]any{"heartbeat_interval": 45000},
		})
		if err != nil {
			return
		}

		var p payload
		if err := wsjson.Read(ctx, conn, &p); err != nil || p.Op != opIdentify {
			t.Errorf("expected identify, got op %d err %v", p.Op, err)
			return
		}
		var id identify
		if err := json.Unmarshal(p.Data, &id); err != nil {
			t.Errorf("decoding identify: %v", err)
			return
		}
		gotIdentify <- id

		err = wsjson.Write(ctx, conn, map[string]any{
			"op": opDispatch,
			"t":  "READY",
			"s":  1,
			"d":  map[string]any{"user": map[string]any{"id": "42", "username": "bot"}},
		})
		if err != nil {
			return
		}
		err = wsjson.Write(ctx, conn, map[string]any{
			"op": opDispatch,
			"t":  "MESSAGE_CREATE",
			"s":  2,
			"d": map[string]any{
				"id":         "900",
				"channel_id": "800",
				"content":    "<@42> hello",
				"author":     map[string]any{"id": "7", "username": "alice"},
				"mentions":   []map[string]any{{"id": "42"}},
			},
		})
		if err != nil {
			return
		}

		// Hold the connection open until the client goes away.
		_, _, _ = conn.Read(ctx)
	}))
}

func TestSession_HandshakeAndDispatch(t *testing.T) {
	t.Parallel()

	gotIdentify := make(chan identify, 1)
	srv := fakeGateway(t, gotIdentify)
	defer srv.Close()

	events := make(chan *MessageCreate, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := NewSession(Config{Token: "tok", GatewayURL: srv.URL}, logger, func(msg *MessageCreate) {
		events <- msg
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	select {
	case id := <-gotIdentify:
		if id.Token != "tok" {
			t.Errorf("identify token = %q", id.Token)
		}
		if id.Intents != intents {
			t.Errorf("identify intents = %d, want %d", id.Intents, intents)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for identify")
	}

	select {
	case msg := <-events:
		if msg.Content != "<@42> hello" || msg.Author.ID != "7" || msg.ChannelID != "800" {
			t.Errorf("event = %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for MESSAGE_CREATE")
	}

	if session.BotID() != "42" {
		t.Errorf("BotID() = %q, want 42", session.BotID())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHeartbeatLoop_ZeroInterval(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := NewSession(Config{Token: "tok"}, logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A zero interval from a malformed hello must be clamped, not panic.
	session.heartbeatLoop(ctx, nil, 0)
}

func TestSession_SkipsBotAuthors(t *testing.T) {
	t.Parallel()

	var called bool
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := NewSession(Config{Token: "tok"}, logger, func(*MessageCreate) { called = true })

	raw, _ := json.Marshal(map[string]any{
		"id":      "1",
		"content": "hi",
		"author":  map[string]any{"id": "9", "bot": true},
	})
	session.handleDispatch(payload{Op: opDispatch, Type: "MESSAGE_CREATE", Data: raw})

	if called {
		t.Error("onEvent fired for a bot-authored message")
	}
}
