package knowledge

import (
	"strings"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	in := Payload{
		Title:   "release schedule",
		URL:     "https://example.com/schedule",
		Content: "The client deliverable ships on Friday.",
	}

	out, err := payloadFrom(in.values())
	if err != nil {
		t.Fatalf("payloadFrom: %v", err)
	}
	if out != in {
		t.Errorf("payload = %+v, want %+v", out, in)
	}
}

func TestPayloadFrom_MissingField(t *testing.T) {
	t.Parallel()

	values := qdrant.NewValueMap(map[string]any{
		"title": "t",
		"url":   "u",
	})
	_, err := payloadFrom(values)
	if err == nil {
		t.Fatal("payloadFrom = nil, want error")
	}
	if !strings.Contains(err.Error(), "content") {
		t.Errorf("error %q does not name the missing field", err)
	}
}

func TestPayloadFrom_WrongKind(t *testing.T) {
	t.Parallel()

	values := qdrant.NewValueMap(map[string]any{
		"title":   "t",
		"url":     "u",
		"content": int64(42),
	})
	_, err := payloadFrom(values)
	if err == nil {
		t.Fatal("payloadFrom = nil, want error")
	}
	if !strings.Contains(err.Error(), "expected string") {
		t.Errorf("error %q does not describe the kind mismatch", err)
	}
}
