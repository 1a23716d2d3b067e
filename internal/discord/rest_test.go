package discord

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateMessage(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotReq createMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`{"id": "999"}`))
	}))
	defer srv.Close()

	rest := newRESTClient(Config{Token: "tok", APIURL: srv.URL})
	if err := rest.createMessage(context.Background(), "123", "hello", "456"); err != nil {
		t.Fatalf("createMessage: %v", err)
	}

	if gotPath != "/channels/123/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bot tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Content != "hello" {
		t.Errorf("content = %q", gotReq.Content)
	}
	if gotReq.MessageReference == nil || gotReq.MessageReference.MessageID != "456" {
		t.Errorf("message_reference = %+v", gotReq.MessageReference)
	}
}

func TestCreateMessage_NoReference(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "message_reference") {
			t.Errorf("body contains message_reference: %s", raw)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rest := newRESTClient(Config{Token: "tok", APIURL: srv.URL})
	if err := rest.createMessage(context.Background(), "123", "hello", ""); err != nil {
		t.Fatalf("createMessage: %v", err)
	}
}

func TestCreateMessage_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Missing Access", "code": 50001}`))
	}))
	defer srv.Close()

	rest := newRESTClient(Config{Token: "tok", APIURL: srv.URL})
	err := rest.createMessage(context.Background(), "123", "hello", "")
	if err == nil {
		t.Fatal("createMessage = nil, want error")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q does not mention the status code", err)
	}
}

func TestReply_ChunksAndReferences(t *testing.T) {
	t.Parallel()

	var reqs []createMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reqs = append(reqs, req)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ch := NewChannel(Config{Token: "tok", APIURL: srv.URL}, logger, nil, nil)

	content := strings.Repeat("a", maxMessageLength+10)
	if err := ch.Reply(context.Background(), "chan", "orig", content); err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if len(reqs) != 2 {
		t.Fatalf("len(reqs) = %d, want 2", len(reqs))
	}
	// Only the first chunk replies to the original message.
	if reqs[0].MessageReference == nil || reqs[0].MessageReference.MessageID != "orig" {
		t.Errorf("first chunk reference = %+v", reqs[0].MessageReference)
	}
	if reqs[1].MessageReference != nil {
		t.Errorf("second chunk reference = %+v, want nil", reqs[1].MessageReference)
	}
	if len(reqs[0].Content) != maxMessageLength || len(reqs[1].Content) != 10 {
		t.Errorf("chunk lengths = %d, %d", len(reqs[0].Content), len(reqs[1].Content))
	}
}
