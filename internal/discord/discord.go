// Package discord connects the bot to Discord: a websocket gateway
// session for inbound events and a REST client for replies.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// RespondFunc answers one user question. It is called on its own
// goroutine per inbound message.
type RespondFunc func(ctx context.Context, userID, question string) (string, error)

// FallbackFunc maps a respond error to user-facing text, or "" when the
// error warrants no reply.
type FallbackFunc func(err error) string

// Channel is the Discord messaging channel: it gates inbound messages on
// a bot mention, dispatches each question to the respond pipeline on its
// own goroutine, and delivers replies chunked to the platform limit.
type Channel struct {
	config   Config
	logger   *slog.Logger
	respond  RespondFunc
	fallback FallbackFunc

	session *Session
	rest    *restClient
	cron    *cron.Cron

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	presenceMu  sync.Mutex
	presenceIdx int
}

// NewChannel creates the channel. fallback may be nil to suppress
// fallback replies.
func NewChannel(cfg Config, logger *slog.Logger, respond RespondFunc, fallback FallbackFunc) *Channel {
	cfg.Defaults()
	ch := &Channel{
		config:   cfg,
		logger:   logger.With("component", "discord"),
		respond:  respond,
		fallback: fallback,
		rest:     newRESTClient(cfg),
	}
	ch.session = NewSession(cfg, logger, ch.handleMessage)
	return ch
}

// Start connects the gateway session and begins presence rotation.
func (c *Channel) Start() error {
	if c.config.Token == "" {
		return errors.New("discord: token is required")
	}

	c.runCtx, c.cancel = context.WithCancel(context.Background())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.session.Run(c.runCtx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("gateway session ended", "error", err)
		}
	}()

	if len(c.config.Presences) > 0 {
		c.cron = cron.New()
		if _, err := c.cron.AddFunc(c.config.PresenceCron, c.rotatePresence); err != nil {
			return fmt.Errorf("discord: invalid presence_cron %q: %w", c.config.PresenceCron, err)
		}
		c.cron.Start()
	}
	return nil
}

// Stop tears down the gateway session and waits for in-flight work.
func (c *Channel) Stop(ctx context.Context) error {
	if c.cron != nil {
		c.cron.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleMessage runs inline on the gateway read loop: it gates on a bot
// mention and hands the real work to a goroutine so the read loop never
// blocks on the completion API.
func (c *Channel) handleMessage(msg *MessageCreate) {
	botID := c.session.BotID()
	if botID == "" || !mentionsUser(msg, botID) {
		return
	}
	question, ok := extractQuestion(msg.Content, botID)
	if !ok {
		return
	}

	c.logger.Info("mentioned",
		"user", msg.Author.Username,
		"user_id", msg.Author.ID,
		"channel_id", msg.ChannelID,
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.answer(msg, question)
	}()
}

func (c *Channel) answer(msg *MessageCreate, question string) {
	reply, err := c.respond(c.runCtx, msg.Author.ID, question)
	if err != nil {
		c.logger.Error("respond failed", "user_id", msg.Author.ID, "error", err)
		if c.fallback == nil {
			return
		}
		reply = c.fallback(err)
		if reply == "" {
			return
		}
	}

	if err := c.Reply(c.runCtx, msg.ChannelID, msg.ID, reply); err != nil {
		c.logger.Error("sending reply failed", "channel_id", msg.ChannelID, "error", err)
	}
}

// Reply sends content to a channel as a reply, splitting it into multiple
// messages when it exceeds Discord's length limit. Only the first chunk
// carries the reply reference.
func (c *Channel) Reply(ctx context.Context, channelID, replyToID, content string) error {
	for i, chunk := range splitContent(content, maxMessageLength) {
		ref := ""
		if i == 0 {
			ref = replyToID
		}
		if err := c.rest.createMessage(ctx, channelID, chunk, ref); err != nil {
			return err
		}
	}
	return nil
}

// rotatePresence advances to the next configured activity.
func (c *Channel) rotatePresence() {
	c.presenceMu.Lock()
	name := c.config.Presences[c.presenceIdx%len(c.config.Presences)]
	c.presenceIdx++
	c.presenceMu.Unlock()

	if err := c.session.UpdatePresence(c.runCtx, name); err != nil {
		c.logger.Warn("presence update failed", "error", err)
	}
}
