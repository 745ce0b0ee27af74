// Package commands holds the declarative slash-command surface and the
// component identifiers that route interactions back to the bot.
package commands

import (
	"strings"

	"github.com/lizardlabs/ticketbot/internal/discord"
)

// Slash command names.
const (
	SetupTicketPanel = "setup-ticket-panel"
	DeleteTicket     = "delete-ticket"
	ConvertToGithub  = "convert-to-github"
	TicketPublish    = "ticket-publish"
	TicketSummon     = "ticket-summon"
)

// Component custom ids.
const (
	CreateTicketButton  = "create_ticket"
	CloseTicketButton   = "close_ticket"
	ConfirmDeleteButton = "confirm_delete_ticket"
	CancelDeleteButton  = "cancel_delete_ticket"
	CategorySelect      = "ticket_category_select"

	TitleInput   = "ticket_title"
	MessageInput = "ticket_message"

	ticketModalPrefix = "ticket_modal:"
)

// TicketModalID tags the chosen category into the creation modal's custom id
// so it survives the round trip without server-side state.
func TicketModalID(category string) string {
	return ticketModalPrefix + category
}

// ParseTicketModalID recovers the category carried by a modal custom id.
func ParseTicketModalID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, ticketModalPrefix) {
		return "", false
	}
	return strings.TrimPrefix(customID, ticketModalPrefix), true
}

// Default member permission bitfields gating command visibility.
var (
	manageChannels = discord.FormatPermissions(discord.PermManageChannels)
	administrator  = discord.FormatPermissions(discord.PermAdministrator)
)

// All returns the slash commands the bot registers at startup.
func All() []discord.ApplicationCommand {
	return []discord.ApplicationCommand{
		{
			Name:                     SetupTicketPanel,
			Description:              "Setup the ticket creation panel",
			DefaultMemberPermissions: administrator,
		},
		{
			Name:                     DeleteTicket,
			Description:              "Delete the current ticket channel (Staff only)",
			DefaultMemberPermissions: manageChannels,
		},
		{
			Name:                     ConvertToGithub,
			Description:              "Convert this ticket to a GitHub issue (Staff only)",
			DefaultMemberPermissions: manageChannels,
			Options: []discord.ApplicationCommandOption{
				{
					Type:        discord.CommandOptionString,
					Name:        "title",
					Description: "Title for the GitHub issue",
					Required:    true,
					MaxLength:   100,
				},
				{
					Type:        discord.CommandOptionString,
					Name:        "description",
					Description: "Additional description for the issue (optional)",
					MaxLength:   1000,
				},
			},
		},
		{
			Name:                     TicketPublish,
			Description:              "Make this ticket publicly visible and lock replies (Staff only)",
			DefaultMemberPermissions: manageChannels,
			Options: []discord.ApplicationCommandOption{
				{
					Type:        discord.CommandOptionString,
					Name:        "reason",
					Description: "Reason for making this ticket public",
					Required:    true,
				},
			},
		},
		{
			Name:                     TicketSummon,
			Description:              "Add a specified user to the current ticket channel (Staff only)",
			DefaultMemberPermissions: manageChannels,
			Options: []discord.ApplicationCommandOption{
				{
					Type:        discord.CommandOptionUser,
					Name:        "user",
					Description: "The user to add to this ticket",
					Required:    true,
				},
			},
		},
	}
}
