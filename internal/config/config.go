package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

var (
	ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN is not set")
	ErrGuildIDNotSet      = errors.New("MODMAIL_GUILD_ID is not set")
	ErrInvalidPrefix      = errors.New("command prefix must not be empty or contain spaces")
	ErrInvalidRetention   = errors.New("thread retention must be positive")
)

type Config struct {
	DiscordToken string `yaml:"discord_token" envconfig:"DISCORD_TOKEN"`
	Prefix       string `yaml:"prefix" envconfig:"BOT_PREFIX"`

	// Support threads are created as text channels in this guild and category
	GuildID          string   `yaml:"guild_id" envconfig:"MODMAIL_GUILD_ID"`
	CategoryID       string   `yaml:"category_id" envconfig:"MODMAIL_CATEGORY_ID"`
	Greeting         string   `yaml:"greeting" envconfig:"THREAD_GREETING"`
	OwnerIDs         []string `yaml:"owner_ids" envconfig:"OWNER_IDS"`
	SupporterRoleIDs []string `yaml:"supporter_role_ids" envconfig:"SUPPORTER_ROLE_IDS"`

	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH"`

	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	ThreadRetention   time.Duration `yaml:"thread_retention" envconfig:"THREAD_RETENTION"`
	RetentionSchedule string        `yaml:"retention_schedule" envconfig:"RETENTION_SCHEDULE"`
}

// Default returns the configuration used before any file or environment
// overrides are applied
func Default() *Config {
	return &Config{
		Prefix:            "?",
		Greeting:          "Thanks for reaching out! A staff member will be with you shortly.",
		DatabasePath:      "hokkomail.db",
		LogLevel:          "info",
		LogFormat:         "console",
		ThreadRetention:   30 * 24 * time.Hour,
		RetentionSchedule: "0 0 3 * * *",
	}
}

// LoadConfig loads the configuration and validates it for running the bot
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then environment variables, each layer overriding the previous one.
// The result is not validated; offline tools only need the database settings.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the bot cannot run without
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrDiscordTokenNotSet
	}
	if c.GuildID == "" {
		return ErrGuildIDNotSet
	}
	if c.Prefix == "" || strings.ContainsAny(c.Prefix, " \t\n") {
		return ErrInvalidPrefix
	}
	if c.ThreadRetention <= 0 {
		return ErrInvalidRetention
	}
	return nil
}
