package discord

import "encoding/json"

// Gateway opcodes (API v10).
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opPresenceUpdate = 3
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// Gateway intents the bot subscribes to: guild messages, direct messages,
// and message content.
const intents = (1 << 9) | (1 << 12) | (1 << 15)

// payload is the envelope of every gateway frame.
type payload struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  *int64          `json:"s,omitempty"`
	Type string          `json:"t,omitempty"`
}

// hello is the op 10 payload.
type hello struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// identify is the op 2 payload.
type identify struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// presenceUpdate is the op 3 payload.
type presenceUpdate struct {
	Since      *int64     `json:"since"`
	Activities []activity `json:"activities"`
	Status     string     `json:"status"`
	AFK        bool       `json:"afk"`
}

type activity struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

// User is a Discord user as it appears in gateway events.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// ready is the READY dispatch payload.
type ready struct {
	User             User   `json:"user"`
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
}

// MessageCreate is the MESSAGE_CREATE dispatch payload.
type MessageCreate struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Content   string `json:"content"`
	Author    User   `json:"author"`
	Mentions  []User `json:"mentions"`
}
