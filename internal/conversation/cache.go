package conversation

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Default cache capacities.
const (
	DefaultMaxUsers   = 256
	DefaultMaxHistory = 20
)

// Cache maps a user identifier to that user's conversation context. It is
// bounded two ways: at most maxUsers tracked users (whole-entry LRU
// eviction) and at most maxHistory messages per user (oldest message
// dropped on overflow).
//
// All operations are serialised by a single mutex covering the whole map,
// including the LRU touch and the per-entry size cap. The critical section
// never blocks on I/O; callers copy the context out, release the lock, do
// their network calls, then write the reply back. A panic inside the
// critical section poisons the cache: every later call fails with
// ErrCachePoisoned instead of proceeding on possibly torn LRU state.
type Cache struct {
	mu         sync.Mutex
	poisoned   bool
	entries    *simplelru.LRU[string, *Context]
	maxHistory int
	evictFn    func(userID string)
}

// NewCache creates a cache tracking at most maxUsers users with at most
// maxHistory messages each. Values <= 0 select the defaults.
func NewCache(maxUsers, maxHistory int) (*Cache, error) {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxUsers
	}
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	c := &Cache{maxHistory: maxHistory}
	lru, err := simplelru.NewLRU(maxUsers, func(key string, _ *Context) {
		if c.evictFn != nil {
			c.evictFn(key)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: creating cache: %w", err)
	}
	c.entries = lru
	return c, nil
}

// OnEvict registers a hook called with the user ID whenever LRU pressure
// evicts an entry. Intended for metrics; the hook runs under the cache
// lock and must not call back into the cache.
func (c *Cache) OnEvict(fn func(userID string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictFn = fn
}

// AddMessage appends a message to the user's context, creating the entry
// if the user is new (possibly evicting the least-recently-used user), then
// enforces the per-entry cap by dropping the oldest message.
func (c *Cache) AddMessage(userID string, role Role, content, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poisoned {
		return ErrCachePoisoned
	}
	defer c.poisonOnPanic()

	ctx, ok := c.entries.Get(userID)
	if !ok {
		ctx = NewContext()
		c.entries.Add(userID, ctx)
	}

	ctx.Add(role, content, name)
	if len(ctx.Messages) > c.maxHistory {
		copy(ctx.Messages, ctx.Messages[1:])
		ctx.Messages = ctx.Messages[:len(ctx.Messages)-1]
	}
	return nil
}

// Messages returns an owned snapshot of the user's context so that cache
// mutation and in-flight request construction cannot race on the same
// instance. An unknown user yields an empty context, not an error.
// Reading counts as a use for LRU purposes.
func (c *Cache) Messages(userID string) (*Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poisoned {
		return nil, ErrCachePoisoned
	}
	defer c.poisonOnPanic()

	ctx, ok := c.entries.Get(userID)
	if !ok {
		return NewContext(), nil
	}
	return ctx.Clone(), nil
}

// Users returns the number of tracked users.
func (c *Cache) Users() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// poisonOnPanic marks the cache poisoned when the enclosing critical
// section panics, then re-raises. Must be deferred after the lock is held.
func (c *Cache) poisonOnPanic() {
	if r := recover(); r != nil {
		c.poisoned = true
		panic(r)
	}
}
