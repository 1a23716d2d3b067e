package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// readLimit bounds a single gateway frame (1 MB).
const readLimit = 1 << 20

// maxBackoff caps the reconnect delay.
const maxBackoff = 2 * time.Minute

// minHeartbeat floors the gateway-announced heartbeat interval so a
// malformed hello cannot produce a zero or negative timer.
const minHeartbeat = time.Second

// Session maintains the websocket connection to the Discord gateway:
// hello/identify handshake, heartbeating with ack tracking, and event
// dispatch. Lost connections are re-established with exponential backoff.
type Session struct {
	config  Config
	logger  *slog.Logger
	onEvent func(msg *MessageCreate)

	mu    sync.Mutex
	conn  *websocket.Conn
	botID string

	seq   atomic.Int64
	acked atomic.Bool
}

// NewSession creates a Session. onEvent is called inline from the read
// loop for every MESSAGE_CREATE; it must not block.
func NewSession(cfg Config, logger *slog.Logger, onEvent func(msg *MessageCreate)) *Session {
	cfg.Defaults()
	return &Session{
		config:  cfg,
		logger:  logger.With("component", "discord.gateway"),
		onEvent: onEvent,
	}
}

// BotID returns the bot's own user ID, known after the first READY.
func (s *Session) BotID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.botID
}

// Run connects to the gateway and serves events until ctx is cancelled,
// reconnecting on failure.
func (s *Session) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		started := time.Now()
		err := s.connectAndServe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A connection that lived a while earns a fresh backoff.
		if time.Since(started) > time.Minute {
			backoff = time.Second
		}
		s.logger.Warn("gateway connection lost", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// connectAndServe performs one full gateway session: dial, hello,
// identify, then read until the connection drops.
func (s *Session) connectAndServe(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.config.GatewayURL, nil)
	if err != nil {
		return fmt.Errorf("discord: dialing gateway: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(readLimit)

	p, err := s.readPayload(ctx, conn)
	if err != nil {
		return fmt.Errorf("discord: reading hello: %w", err)
	}
	if p.Op != opHello {
		return fmt.Errorf("discord: expected hello, got op %d", p.Op)
	}
	var h hello
	if err := json.Unmarshal(p.Data, &h); err != nil {
		return fmt.Errorf("discord: decoding hello: %w", err)
	}

	s.setConn(conn)
	defer s.setConn(nil)

	err = s.sendPayload(ctx, conn, opIdentify, identify{
		Token:   s.config.Token,
		Intents: intents,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "discord-ai-bot",
			Device:  "discord-ai-bot",
		},
	})
	if err != nil {
		return fmt.Errorf("discord: identify: %w", err)
	}

	hbCtx, cancelHB := context.WithCancel(ctx)
	defer cancelHB()
	s.acked.Store(true)
	go s.heartbeatLoop(hbCtx, conn, time.Duration(h.HeartbeatInterval)*time.Millisecond)

	return s.readLoop(ctx, conn)
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		p, err := s.readPayload(ctx, conn)
		if err != nil {
			return err
		}
		if p.Seq != nil {
			s.seq.Store(*p.Seq)
		}

		switch p.Op {
		case opDispatch:
			s.handleDispatch(p)
		case opHeartbeat:
			if err := s.sendHeartbeat(ctx, conn); err != nil {
				return err
			}
		case opHeartbeatACK:
			s.acked.Store(true)
		case opReconnect:
			return errors.New("discord: gateway requested reconnect")
		case opInvalidSession:
			return errors.New("discord: session invalidated")
		}
	}
}

func (s *Session) handleDispatch(p payload) {
	switch p.Type {
	case "READY":
		var r ready
		if err := json.Unmarshal(p.Data, &r); err != nil {
			s.logger.Warn("decoding READY failed", "error", err)
			return
		}
		s.mu.Lock()
		s.botID = r.User.ID
		s.mu.Unlock()
		s.logger.Info("connected to discord", "username", r.User.Username, "id", r.User.ID)

	case "MESSAGE_CREATE":
		var msg MessageCreate
		if err := json.Unmarshal(p.Data, &msg); err != nil {
			s.logger.Warn("decoding MESSAGE_CREATE failed", "error", err)
			return
		}
		if msg.Author.Bot {
			return
		}
		s.onEvent(&msg)
	}
}

// heartbeatLoop beats at the interval the gateway asked for, with the
// usual initial jitter. A missing ack between beats means the connection
// is a zombie; closing it kicks the read loop into reconnecting.
func (s *Session) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	if interval < minHeartbeat {
		interval = minHeartbeat
	}
	jitter := time.Duration(rand.Int63n(int64(interval)))
	select {
	case <-ctx.Done():
		return
	case <-time.After(jitter):
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !s.acked.Load() {
			s.logger.Warn("heartbeat ack missing, closing connection")
			_ = conn.Close(websocket.StatusPolicyViolation, "heartbeat ack timeout")
			return
		}
		s.acked.Store(false)
		if err := s.sendHeartbeat(ctx, conn); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Session) sendHeartbeat(ctx context.Context, conn *websocket.Conn) error {
	var seq any
	if n := s.seq.Load(); n > 0 {
		seq = n
	}
	return s.sendPayload(ctx, conn, opHeartbeat, seq)
}

// UpdatePresence sets the bot's activity. A nil connection (between
// reconnects) is not an error; the next session starts fresh anyway.
func (s *Session) UpdatePresence(ctx context.Context, name string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return s.sendPayload(ctx, conn, opPresenceUpdate, presenceUpdate{
		Activities: []activity{{Name: name, Type: 0}},
		Status:     "online",
	})
}

func (s *Session) readPayload(ctx context.Context, conn *websocket.Conn) (payload, error) {
	var p payload
	if err := wsjson.Read(ctx, conn, &p); err != nil {
		return payload{}, err
	}
	return p, nil
}

func (s *Session) sendPayload(ctx context.Context, conn *websocket.Conn, op int, d any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("discord: marshal op %d: %w", op, err)
	}
	return wsjson.Write(ctx, conn, payload{Op: op, Data: raw})
}

func (s *Session) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}
