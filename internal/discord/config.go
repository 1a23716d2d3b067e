package discord

// Config holds the Discord channel configuration.
type Config struct {
	// Token is the bot token (without the "Bot " prefix).
	Token string `yaml:"token"`

	// GatewayURL overrides the gateway endpoint. Tests point this at a
	// local server.
	GatewayURL string `yaml:"gateway_url"`

	// APIURL overrides the REST endpoint.
	APIURL string `yaml:"api_url"`

	// Presences is an optional list of activity names the bot rotates
	// through as its status.
	Presences []string `yaml:"presences"`

	// PresenceCron is the cron schedule for presence rotation.
	PresenceCron string `yaml:"presence_cron"`
}

// Defaults fills zero-valued fields.
func (c *Config) Defaults() {
	if c.GatewayURL == "" {
		c.GatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"
	}
	if c.APIURL == "" {
		c.APIURL = "https://discord.com/api/v10"
	}
	if c.PresenceCron == "" {
		c.PresenceCron = "@every 10m"
	}
}
