package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
)

const guildCacheTTL = 5 * time.Minute

// GuildCache is an optional redis-backed cache for guild role and member
// lookups. Every operation fails open: a cache or connection error is logged
// and treated as a miss, so the bot keeps working against the live API when
// redis is absent or unreachable. A nil *GuildCache is valid and always
// misses.
type GuildCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewGuildCache connects to redis using the provided configuration. Returns
// nil when no address is configured, which disables caching entirely.
func NewGuildCache(cfg config.RedisConfig, logger *zap.Logger) *GuildCache {
	if cfg.Addr == "" {
		logger.Info("redis not configured, guild cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &GuildCache{client: client, logger: logger}
}

// Close closes the client.
func (c *GuildCache) Close() {
	if c != nil && c.client != nil {
		_ = c.client.Close()
	}
}

// Ping verifies redis connectivity.
func (c *GuildCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// GetRoles returns the cached role list for a guild.
func (c *GuildCache) GetRoles(ctx context.Context, guildID string) ([]discord.Role, bool) {
	var roles []discord.Role
	if !c.get(ctx, rolesKey(guildID), &roles) {
		return nil, false
	}
	return roles, true
}

// SetRoles caches the role list for a guild.
func (c *GuildCache) SetRoles(ctx context.Context, guildID string, roles []discord.Role) {
	c.set(ctx, rolesKey(guildID), roles)
}

// GetMember returns a cached guild member.
func (c *GuildCache) GetMember(ctx context.Context, guildID, userID string) (*discord.Member, bool) {
	var member discord.Member
	if !c.get(ctx, memberKey(guildID, userID), &member) {
		return nil, false
	}
	return &member, true
}

// SetMember caches a guild member.
func (c *GuildCache) SetMember(ctx context.Context, guildID, userID string, member *discord.Member) {
	c.set(ctx, memberKey(guildID, userID), member)
}

func (c *GuildCache) get(ctx context.Context, key string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("guild cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Debug("guild cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *GuildCache) set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, guildCacheTTL).Err(); err != nil {
		c.logger.Debug("guild cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func rolesKey(guildID string) string {
	return "guild:" + guildID + ":roles"
}

func memberKey(guildID, userID string) string {
	return "guild:" + guildID + ":member:" + userID
}
