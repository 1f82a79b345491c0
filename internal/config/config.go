package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding the config file.
const EnvPrefix = "RBX"

const (
	defaultBotName        = "RbxServers"
	defaultServersMessage = "RbxServers is online! Use the web dashboard to browse and join private servers."
	defaultKeepAliveAddr  = "0.0.0.0:8080"
	defaultSmokeTimeout   = 10 * time.Second
	defaultChromeTimeout  = 30 * time.Second
	defaultGIFFrames      = 30
	defaultGIFDelay       = 50 * time.Millisecond
	defaultDedupCacheSize = 256
)

// DiscordConfig stores Discord specific configurations.
type DiscordConfig struct {
	BotToken         string            `yaml:"bot_token" split_words:"true"`
	ApplicationID    discord.Snowflake `yaml:"application_id" split_words:"true"`
	GuildIDs         []string          `yaml:"guild_ids" split_words:"true"`
	ServersMessage   string            `yaml:"servers_message" split_words:"true"`
	UnregisterOnStop bool              `yaml:"unregister_on_stop" split_words:"true"`
	DedupCacheSize   int               `yaml:"dedup_cache_size" split_words:"true"`
}

// KeepAliveConfig stores the keep-alive HTTP server configuration.
type KeepAliveConfig struct {
	Enabled *bool  `yaml:"enabled" ignored:"true"`
	Addr    string `yaml:"addr" split_words:"true"`
}

// SmokeEndpoint is a single request issued by a smoke suite.
type SmokeEndpoint struct {
	Name   string         `yaml:"name"`
	Method string         `yaml:"method"`
	Path   string         `yaml:"path"`
	Body   map[string]any `yaml:"body"`
}

// SmokeSuite is a named, ordered list of endpoints.
type SmokeSuite struct {
	Name      string          `yaml:"name"`
	Endpoints []SmokeEndpoint `yaml:"endpoints"`
}

// SmokeConfig stores the REST smoke-test configuration.
type SmokeConfig struct {
	BaseURL string        `yaml:"base_url" split_words:"true"`
	Token   string        `yaml:"token" split_words:"true"`
	Timeout time.Duration `yaml:"timeout" split_words:"true"`
	Suites  []SmokeSuite  `yaml:"suites" ignored:"true"`
}

// ChromeConfig stores the Chrome availability probe configuration.
type ChromeConfig struct {
	ExecPath  string        `yaml:"exec_path" split_words:"true"`
	RemoteURL string        `yaml:"remote_url" split_words:"true"`
	NoSandbox bool          `yaml:"no_sandbox" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout" split_words:"true"`
}

// GIFConfig stores the defaults of the GIF generator.
type GIFConfig struct {
	Input      string        `yaml:"input" split_words:"true"`
	Output     string        `yaml:"output" split_words:"true"`
	Frames     int           `yaml:"frames" split_words:"true"`
	Delay      time.Duration `yaml:"delay" split_words:"true"`
	Effect     string        `yaml:"effect" split_words:"true"`
	Size       int           `yaml:"size" split_words:"true"`
	Background string        `yaml:"background" split_words:"true"`
}

// Config stores the application configuration.
type Config struct {
	BotName   string          `yaml:"bot_name" split_words:"true"`
	LogLevel  string          `yaml:"log_level" split_words:"true"`
	Discord   DiscordConfig   `yaml:"discord" split_words:"true"`
	KeepAlive KeepAliveConfig `yaml:"keepalive" split_words:"true"`
	Smoke     SmokeConfig     `yaml:"smoke" split_words:"true"`
	Chrome    ChromeConfig    `yaml:"chrome" split_words:"true"`
	GIF       GIFConfig       `yaml:"gif" split_words:"true"`
}

// LoadConfig loads the configuration from the given file path, applies
// RBX_* environment overrides and fills in defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filePath, err)
	}

	return finish(&cfg)
}

// LoadOptional behaves like LoadConfig but starts from an empty config when
// the file does not exist. Tools that can run from flags and environment
// alone use it.
func LoadOptional(filePath string) (*Config, error) {
	cfg, err := LoadConfig(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return finish(&Config{})
	}

	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config env vars: %w", err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BotName == "" {
		c.BotName = defaultBotName
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Discord.ServersMessage == "" {
		c.Discord.ServersMessage = defaultServersMessage
	}
	if c.Discord.DedupCacheSize <= 0 {
		c.Discord.DedupCacheSize = defaultDedupCacheSize
	}
	if c.KeepAlive.Addr == "" {
		c.KeepAlive.Addr = defaultKeepAliveAddr
	}
	if c.Smoke.Timeout <= 0 {
		c.Smoke.Timeout = defaultSmokeTimeout
	}
	if c.Chrome.Timeout <= 0 {
		c.Chrome.Timeout = defaultChromeTimeout
	}
	if c.GIF.Frames <= 0 {
		c.GIF.Frames = defaultGIFFrames
	}
	if c.GIF.Delay <= 0 {
		c.GIF.Delay = defaultGIFDelay
	}
	if c.GIF.Effect == "" {
		c.GIF.Effect = "spin"
	}
	if c.GIF.Input == "" {
		c.GIF.Input = "logo.png"
	}
	if c.GIF.Output == "" {
		c.GIF.Output = "logo.gif"
	}
}

// KeepAliveEnabled reports whether the keep-alive server should run.
// It defaults to true when the key is absent.
func (c *Config) KeepAliveEnabled() bool {
	return c.KeepAlive.Enabled == nil || *c.KeepAlive.Enabled
}

// ParseGuildIDs parses the configured guild IDs. Invalid IDs are returned in
// the second slice so the caller can log them.
func (d DiscordConfig) ParseGuildIDs() ([]discord.GuildID, []string) {
	var (
		ids     []discord.GuildID
		invalid []string
	)
	for _, idStr := range d.GuildIDs {
		sf, err := discord.ParseSnowflake(idStr)
		if err != nil || !sf.IsValid() {
			invalid = append(invalid, idStr)

			continue
		}
		ids = append(ids, discord.GuildID(sf))
	}

	return ids, invalid
}
