package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Prefix       string        `env:"BOT_PREFIX" envDefault:"!"`
	DatabasePath string        `env:"BOT_DATABASE_PATH" envDefault:"data/happybot.db"`
	RolesFile    string        `env:"BOT_ROLES_FILE"`
	EventsAddr   string        `env:"BOT_WS_ADDR" envDefault:":8080"`
	WebOrigins   []string      `env:"BOT_WS_ALLOWED_ORIGINS" envSeparator:","`
	RestartGrace time.Duration `env:"BOT_RESTART_GRACE" envDefault:"1s"`

	// Channel that receives the impending update banner.
	MetaPlatform string `env:"BOT_META_PLATFORM" envDefault:"twitch"`
	MetaChannel  string `env:"BOT_META_CHANNEL"`

	TwitchUsername      string   `env:"TWITCH_BOT_USERNAME"`
	TwitchToken         string   `env:"TWITCH_BOT_ACCESS_TOKEN"`
	TwitchChannels      []string `env:"TWITCH_BOT_CHANNELS" envSeparator:","`
	TwitchClientId      string   `env:"TWITCH_CLIENT_ID"`
	TwitchApiToken      string   `env:"TWITCH_API_ACCESS_TOKEN"`
	TwitchBroadcasterId string   `env:"TWITCH_BROADCASTER_ID"`
	TwitchModeratorId   string   `env:"TWITCH_MODERATOR_ID"`

	KickToken             string `env:"KICK_BOT_TOKEN"`
	KickBroadcasterUserID int    `env:"KICK_BROADCASTER_USER_ID"`
	KickChatroomID        int    `env:"KICK_CHATROOM_ID"`
}

// Load reads the given .env files (or ./.env) into the environment and
// parses the configuration from it. Missing files are not an error.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.TwitchUsername == "" || cfg.TwitchToken == "" {
		log.Println("config: Twitch bot credentials not set, Twitch chat disabled")
	}
	if cfg.KickToken == "" || cfg.KickChatroomID == 0 {
		log.Println("config: Kick bot credentials not set, Kick chat disabled")
	}

	return cfg, nil
}

func (c *Config) TwitchEnabled() bool {
	return c.TwitchUsername != "" && c.TwitchToken != "" && len(c.TwitchChannels) > 0
}

func (c *Config) KickEnabled() bool {
	return c.KickToken != "" && c.KickChatroomID != 0 && c.KickBroadcasterUserID != 0
}

func (c *Config) HelixEnabled() bool {
	return c.TwitchClientId != "" && c.TwitchApiToken != ""
}
