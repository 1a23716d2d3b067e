// Package conversation holds per-user short-term dialogue memory: the
// message and context types plus a bounded, LRU-evicting cache keyed by
// user identifier.
package conversation

// Role identifies the author of a conversation message.
type Role string

// Role constants matching the chat completion API wire format.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. It is a plain value and is never
// mutated after creation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}
