package conversation

// Context is an ordered sequence of messages, insertion order being
// chronological order. By convention the first message of a context built
// for a completion request is the steering system message.
//
// All Add methods append to the tail and return the receiver so calls can
// be chained when assembling a request.
type Context struct {
	Messages []Message
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// Add appends a message with the given role.
func (c *Context) Add(role Role, content, name string) *Context {
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Name: name})
	return c
}

// AddSystem appends a system message.
func (c *Context) AddSystem(content, name string) *Context {
	return c.Add(RoleSystem, content, name)
}

// AddUser appends a user message.
func (c *Context) AddUser(content, name string) *Context {
	return c.Add(RoleUser, content, name)
}

// AddAssistant appends an assistant message.
func (c *Context) AddAssistant(content, name string) *Context {
	return c.Add(RoleAssistant, content, name)
}

// Extend appends all messages of other to the tail.
func (c *Context) Extend(other *Context) *Context {
	if other != nil {
		c.Messages = append(c.Messages, other.Messages...)
	}
	return c
}

// Len returns the number of messages.
func (c *Context) Len() int {
	return len(c.Messages)
}

// Clone returns a deep-enough copy: messages are values, so copying the
// slice fully decouples the clone from the original.
func (c *Context) Clone() *Context {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return &Context{Messages: msgs}
}
