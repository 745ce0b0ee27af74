package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/persistence"
)

// GuildDirectory resolves guild roles and members, consulting the optional
// redis cache before the live API. Cache misses and cache failures both fall
// through to Discord; results are written back best-effort.
type GuildDirectory struct {
	dc      *discord.Client
	cache   *persistence.GuildCache
	guildID string
	logger  *zap.Logger
}

// NewGuildDirectory constructs the directory for a single guild.
func NewGuildDirectory(dc *discord.Client, cache *persistence.GuildCache, guildID string, logger *zap.Logger) *GuildDirectory {
	return &GuildDirectory{dc: dc, cache: cache, guildID: guildID, logger: logger}
}

// Roles returns the guild's role list.
func (d *GuildDirectory) Roles(ctx context.Context) ([]discord.Role, error) {
	if roles, ok := d.cache.GetRoles(ctx, d.guildID); ok {
		return roles, nil
	}
	roles, err := d.dc.GetGuildRoles(ctx, d.guildID)
	if err != nil {
		return nil, err
	}
	d.cache.SetRoles(ctx, d.guildID, roles)
	return roles, nil
}

// Member resolves a guild member by user id.
func (d *GuildDirectory) Member(ctx context.Context, userID string) (*discord.Member, error) {
	if member, ok := d.cache.GetMember(ctx, d.guildID, userID); ok {
		return member, nil
	}
	member, err := d.dc.GetGuildMember(ctx, d.guildID, userID)
	if err != nil {
		return nil, err
	}
	d.cache.SetMember(ctx, d.guildID, userID, member)
	return member, nil
}

// CreatorFromOverwrites is the best-effort fallback for recovering a ticket
// creator when the topic carries no creator id: the first member-type
// overwrite granting view whose member is neither a bot nor staff wins. The
// first-match policy is a known limitation kept on purpose; there is no
// deterministic tie-break among multiple candidates.
func (d *GuildDirectory) CreatorFromOverwrites(ctx context.Context, channel *discord.Channel, staffRoleID, botID string) string {
	for _, ow := range channel.PermissionOverwrites {
		if ow.Type != discord.OverwriteMember || !ow.AllowsView() || ow.ID == botID {
			continue
		}
		member, err := d.Member(ctx, ow.ID)
		if err != nil {
			continue
		}
		if member.User != nil && member.User.Bot {
			continue
		}
		if member.HasRole(staffRoleID) {
			continue
		}
		return ow.ID
	}
	return ""
}
