package knowledge

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Payload is one knowledge-base record.
type Payload struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Hit is a search result: the stored payload plus its similarity score.
type Hit struct {
	Payload
	Score float32
}

// values converts the payload to Qdrant's tagged-variant value map.
func (p Payload) values() map[string]*qdrant.Value {
	return qdrant.NewValueMap(map[string]any{
		"title":   p.Title,
		"url":     p.URL,
		"content": p.Content,
	})
}

// payloadFrom reads a payload back from a Qdrant value map. Fields are
// demanded to hold the string kind; any other kind is a data error, not
// something to coerce silently.
func payloadFrom(values map[string]*qdrant.Value) (Payload, error) {
	title, err := stringValue(values, "title")
	if err != nil {
		return Payload{}, err
	}
	url, err := stringValue(values, "url")
	if err != nil {
		return Payload{}, err
	}
	content, err := stringValue(values, "content")
	if err != nil {
		return Payload{}, err
	}
	return Payload{Title: title, URL: url, Content: content}, nil
}

// stringValue extracts a string-kind field from a value map.
func stringValue(values map[string]*qdrant.Value, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("knowledge: payload field %q missing", key)
	}
	kind, ok := v.GetKind().(*qdrant.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("knowledge: payload field %q: expected string, got %T", key, v.GetKind())
	}
	return kind.StringValue, nil
}
