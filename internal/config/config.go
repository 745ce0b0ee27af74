package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App     AppConfig
	Discord DiscordConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Webhook WebhookConfig
	GitHub  GitHubConfig
}

// AppConfig controls the interactions endpoint server.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds the bot credentials and the guild object identifiers
// the ticket system operates on.
type DiscordConfig struct {
	Token     string
	AppID     string
	PublicKey string

	GuildID        string
	PanelChannelID string
	StaffRoleID    string

	// DefaultCategoryID is the fallback ticket container; CategoryIDs maps a
	// ticket category name to its specific container.
	DefaultCategoryID string
	CategoryIDs       map[string]string
}

// RedisConfig holds the optional guild-cache connection values. An empty Addr
// disables the cache entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// WebhookConfig holds the ticket-created notification endpoint.
type WebhookConfig struct {
	URL             string
	MessageTemplate string
}

// GitHubConfig holds issue-tracker settings. An empty Token disables the
// conversion feature.
type GitHubConfig struct {
	Token  string
	Repo   string
	Labels []string
}

// Load reads configuration from environment variables, applying defaults
// where possible. DISCORD_TOKEN and DISCORD_APP_ID are required; everything
// else degrades at the feature level.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, errors.New("DISCORD_TOKEN is required")
	}
	appID := os.Getenv("DISCORD_APP_ID")
	if appID == "" {
		return nil, errors.New("DISCORD_APP_ID is required")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "support-ticket-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token:             token,
			AppID:             appID,
			PublicKey:         os.Getenv("DISCORD_PUBLIC_KEY"),
			GuildID:           os.Getenv("GUILD_ID"),
			PanelChannelID:    os.Getenv("TICKET_PANEL_CHANNEL_ID"),
			StaffRoleID:       os.Getenv("STAFF_TEAM_ROLE_ID"),
			DefaultCategoryID: os.Getenv("TICKET_CHANNEL_CATEGORY_ID"),
			CategoryIDs: map[string]string{
				"General":     os.Getenv("TICKET_CATEGORY_GENERAL_ID"),
				"Bugs":        os.Getenv("TICKET_CATEGORY_BUGS_ID"),
				"Suggestions": os.Getenv("TICKET_CATEGORY_SUGGESTIONS_ID"),
			},
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Webhook: WebhookConfig{
			URL:             os.Getenv("WEBHOOK_URL"),
			MessageTemplate: getEnv("WEBHOOK_MESSAGE_TEMPLATE", "New ticket created: {title} by {user} in category {category}"),
		},
		GitHub: GitHubConfig{
			Token:  os.Getenv("GITHUB_TOKEN"),
			Repo:   getEnv("GITHUB_REPO", "owner/repo"),
			Labels: splitList(getEnv("GITHUB_LABELS", "discord-ticket")),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// ContainerFor returns the parent container id for a ticket category,
// falling back to the default container when no specific one is configured.
func (d DiscordConfig) ContainerFor(category string) string {
	if id := d.CategoryIDs[category]; id != "" {
		return id
	}
	return d.DefaultCategoryID
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
