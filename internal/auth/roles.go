package auth

import (
	"github.com/lizardlabs/ticketbot/internal/discord"
	apperrors "github.com/lizardlabs/ticketbot/pkg/util"
)

// IsStaff reports whether the interaction member carries the configured staff
// role.
func IsStaff(member *discord.Member, staffRoleID string) bool {
	return member.HasRole(staffRoleID)
}

// IsAdmin reports whether the interaction member holds the administrator
// permission, from the resolved permissions Discord attaches to the payload.
func IsAdmin(member *discord.Member) bool {
	if member == nil {
		return false
	}
	return discord.ParsePermissions(member.Permissions)&discord.PermAdministrator != 0
}

// RequireStaff rejects actors without the staff role. The message names the
// blocked action so the ephemeral reply reads naturally.
func RequireStaff(member *discord.Member, staffRoleID, action string) error {
	if staffRoleID == "" {
		return apperrors.NewConfigError("Ticket system is not fully configured. Please contact an administrator.", nil)
	}
	if !IsStaff(member, staffRoleID) {
		return apperrors.NewPermissionDenied("You do not have permission to " + action + ". Staff role required.")
	}
	return nil
}

// RequireAdmin rejects actors without the administrator permission.
func RequireAdmin(member *discord.Member) error {
	if !IsAdmin(member) {
		return apperrors.NewPermissionDenied("Administrator permission required.")
	}
	return nil
}
