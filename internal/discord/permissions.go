package discord

import "strconv"

// Capability bits used by the ticket permission model.
const (
	PermAdministrator      uint64 = 1 << 3
	PermManageChannels     uint64 = 1 << 4
	PermViewChannel        uint64 = 1 << 10
	PermSendMessages       uint64 = 1 << 11
	PermManageMessages     uint64 = 1 << 13
	PermReadMessageHistory uint64 = 1 << 16
)

// ParsePermissions decodes a decimal bitfield string. Unparseable input
// yields zero permissions.
func ParsePermissions(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatPermissions encodes a bitfield in the decimal string form the API
// expects.
func FormatPermissions(bits uint64) string {
	return strconv.FormatUint(bits, 10)
}

// RoleOverwrite builds an overwrite entry targeting a role principal.
func RoleOverwrite(roleID string, allow, deny uint64) PermissionOverwrite {
	return PermissionOverwrite{
		ID:    roleID,
		Type:  OverwriteRole,
		Allow: FormatPermissions(allow),
		Deny:  FormatPermissions(deny),
	}
}

// MemberOverwrite builds an overwrite entry targeting a member principal.
func MemberOverwrite(userID string, allow, deny uint64) PermissionOverwrite {
	return PermissionOverwrite{
		ID:    userID,
		Type:  OverwriteMember,
		Allow: FormatPermissions(allow),
		Deny:  FormatPermissions(deny),
	}
}

// AllowsView reports whether the overwrite's allow set contains view.
func (o PermissionOverwrite) AllowsView() bool {
	return ParsePermissions(o.Allow)&PermViewChannel != 0
}

// BasePermissions computes a member's guild-level permissions as the union of
// the @everyone role and the member's roles.
func BasePermissions(guildID string, roles []Role, member *Member) uint64 {
	var bits uint64
	for _, role := range roles {
		if role.ID == guildID || (member != nil && member.HasRole(role.ID)) {
			bits |= ParsePermissions(role.Permissions)
		}
	}
	return bits
}

// ComputeChannelPermissions resolves a member's effective permissions in a
// channel following Discord's documented algorithm: base permissions, then the
// @everyone overwrite, then the member's role overwrites, then the member
// overwrite, applying denies before allows at each level.
func ComputeChannelPermissions(guildID string, roles []Role, member *Member, channel *Channel) uint64 {
	perms := BasePermissions(guildID, roles, member)
	if perms&PermAdministrator != 0 {
		return ^uint64(0)
	}

	for _, ow := range channel.PermissionOverwrites {
		if ow.Type == OverwriteRole && ow.ID == guildID {
			perms &^= ParsePermissions(ow.Deny)
			perms |= ParsePermissions(ow.Allow)
		}
	}

	var roleAllow, roleDeny uint64
	for _, ow := range channel.PermissionOverwrites {
		if ow.Type == OverwriteRole && ow.ID != guildID && member.HasRole(ow.ID) {
			roleAllow |= ParsePermissions(ow.Allow)
			roleDeny |= ParsePermissions(ow.Deny)
		}
	}
	perms &^= roleDeny
	perms |= roleAllow

	if member != nil && member.User != nil {
		for _, ow := range channel.PermissionOverwrites {
			if ow.Type == OverwriteMember && ow.ID == member.User.ID {
				perms &^= ParsePermissions(ow.Deny)
				perms |= ParsePermissions(ow.Allow)
			}
		}
	}
	return perms
}
