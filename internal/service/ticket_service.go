package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/commands"
	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/domain"
	"github.com/lizardlabs/ticketbot/internal/events"
	apperrors "github.com/lizardlabs/ticketbot/pkg/util"
)

// Identity is the acting user of a lifecycle transition.
type Identity struct {
	ID       string
	Username string
	Tag      string
}

// IdentityFrom builds an Identity from an interaction user.
func IdentityFrom(u *discord.User) Identity {
	if u == nil {
		return Identity{}
	}
	return Identity{ID: u.ID, Username: u.Username, Tag: u.Tag()}
}

// Mention renders the identity as a user mention.
func (i Identity) Mention() string {
	return "<@" + i.ID + ">"
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Category domain.Category
	Title    string
	Message  string
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Discord    *discord.Client
	Directory  *GuildDirectory
	Dispatcher events.Dispatcher
	Config     config.DiscordConfig
	Logger     *zap.Logger
}

// TicketService owns the ticket lifecycle state machine: creation,
// participant addition, publication, closing, deletion, and the
// permission-overwrite set attached to each transition. The authoritative
// open/closed state stays inferable from the channel name prefix; an
// in-memory index mirrors it per channel id so transitions need not re-parse
// names they just wrote.
type TicketService struct {
	dc         *discord.Client
	directory  *GuildDirectory
	dispatcher events.Dispatcher
	cfg        config.DiscordConfig
	logger     *zap.Logger

	mu       sync.Mutex
	statuses map[string]domain.Status
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		dc:         deps.Discord,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     deps.Logger,
		statuses:   make(map[string]domain.Status),
	}
}

// Create allocates the ticket channel, applies the initial overwrite set,
// posts the introductory message, and fires the best-effort webhook
// notification. A failure after channel creation is reported but not rolled
// back.
func (s *TicketService) Create(ctx context.Context, actor Identity, input CreateTicketInput) (*discord.Channel, error) {
	category, ok := domain.ParseCategory(string(input.Category))
	if !ok {
		return nil, apperrors.NewValidationError("Invalid category. Please use: General, Bugs, or Suggestions")
	}
	parentID := s.cfg.ContainerFor(string(category))
	if parentID == "" || s.cfg.StaffRoleID == "" {
		return nil, apperrors.NewConfigError(
			"Ticket system is not fully configured. Please contact an administrator.",
			fmt.Errorf("missing ticket container or staff role id"))
	}

	name := domain.ChannelName(category, actor.Username, domain.ShortSuffix(time.Now()))
	channel, err := s.dc.CreateGuildChannel(ctx, s.cfg.GuildID, discord.CreateChannelParams{
		Name:                 name,
		Type:                 discord.ChannelTypeGuildText,
		Topic:                domain.Topic(actor.Tag, actor.ID, category),
		ParentID:             parentID,
		PermissionOverwrites: createOverwrites(s.cfg.GuildID, actor.ID, s.cfg.StaffRoleID, s.cfg.AppID),
	})
	if err != nil {
		return nil, apperrors.NewExternalError("Failed to create ticket. Please try again or contact an administrator.", err)
	}
	s.recordStatus(channel.ID, domain.StatusOpen)

	intro := discord.MessageParams{
		Content: actor.Mention() + " <@&" + s.cfg.StaffRoleID + ">",
		Embeds: []discord.Embed{{
			Title:       "🎫 Ticket: " + input.Title,
			Description: input.Message,
			Fields: []discord.EmbedField{
				{Name: "Category", Value: string(category), Inline: true},
				{Name: "Submitted by", Value: actor.Mention(), Inline: true},
			},
			Color:     category.Color(),
			Timestamp: discord.Timestamp(time.Now()),
			Footer:    &discord.EmbedFooter{Text: "Ticket ID: " + channel.ID},
		}},
		Components: []discord.Component{discord.ActionRow(discord.Component{
			Type:     discord.ComponentButton,
			CustomID: commands.CloseTicketButton,
			Label:    "Close Ticket",
			Style:    discord.ButtonStyleDanger,
			Emoji:    &discord.Emoji{Name: "🔒"},
		})},
	}
	if _, err := s.dc.CreateMessage(ctx, channel.ID, intro); err != nil {
		s.logger.Error("ticket channel created but intro message failed",
			zap.String("channel_id", channel.ID), zap.Error(err))
		return channel, apperrors.NewExternalError("Failed to create ticket. Please try again or contact an administrator.", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		ChannelID: channel.ID,
		Actor:     events.Actor{ID: actor.ID, Tag: actor.Tag},
		Payload: events.TicketCreatedPayload{
			Title:    input.Title,
			Message:  input.Message,
			Category: category,
		},
	})
	s.logger.Info("ticket created",
		zap.String("channel", channel.Name),
		zap.String("creator", actor.Tag))
	return channel, nil
}

// Close archives an open ticket: posts the closing notice, prepends the
// closed prefix to the channel name, and replaces the overwrite set so the
// creator loses access. One-way; no reopen exists.
func (s *TicketService) Close(ctx context.Context, actor Identity, channelID string) error {
	channel, err := s.dc.GetChannel(ctx, channelID)
	if err != nil {
		return apperrors.NewExternalError("Failed to close ticket. Please try again or contact an administrator.", err)
	}
	if !strings.HasPrefix(channel.Name, domain.TicketPrefix) {
		return apperrors.NewPermissionDenied("This command can only be used in ticket channels.")
	}

	notice := discord.MessageParams{Embeds: []discord.Embed{{
		Title:       "🔒 Ticket Closed",
		Description: "This ticket has been closed by " + actor.Tag,
		Color:       0xe74c3c,
		Timestamp:   discord.Timestamp(time.Now()),
	}}}
	if _, err := s.dc.CreateMessage(ctx, channelID, notice); err != nil {
		return apperrors.NewExternalError("Failed to close ticket. Please try again or contact an administrator.", err)
	}

	closedName := domain.ClosedPrefix + channel.Name
	overwrites := closedOverwrites(s.cfg.GuildID, s.cfg.StaffRoleID, s.cfg.AppID)
	if _, err := s.dc.ModifyChannel(ctx, channelID, discord.ModifyChannelParams{
		Name:                 &closedName,
		PermissionOverwrites: &overwrites,
	}); err != nil {
		return apperrors.NewExternalError("Failed to close ticket. Please try again or contact an administrator.", err)
	}
	s.recordStatus(channelID, domain.StatusClosed)

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: channelID,
		Actor:     events.Actor{ID: actor.ID, Tag: actor.Tag},
		Payload:   events.TicketClosedPayload{ChannelName: closedName},
	})
	s.logger.Info("ticket closed", zap.String("channel", closedName), zap.String("actor", actor.Tag))
	return nil
}

// Publish makes a ticket visible to everyone with replies locked, re-adding
// the creator read-only when recoverable. Reapplying is idempotent in effect.
func (s *TicketService) Publish(ctx context.Context, actor Identity, channelID, reason string) error {
	channel, err := s.dc.GetChannel(ctx, channelID)
	if err != nil {
		return apperrors.NewExternalError("Failed to publish this ticket. Please try again or contact an administrator.", err)
	}
	if !domain.IsTicketChannel(channel.Name) {
		return apperrors.NewPermissionDenied("This command can only be used in ticket channels.")
	}

	creatorID, ok := domain.CreatorIDFromTopic(channel.Topic)
	if !ok {
		creatorID = s.directory.CreatorFromOverwrites(ctx, channel, s.cfg.StaffRoleID, s.cfg.AppID)
	}

	overwrites := publicOverwrites(s.cfg.GuildID, s.cfg.StaffRoleID, s.cfg.AppID, creatorID)
	if _, err := s.dc.ModifyChannel(ctx, channelID, discord.ModifyChannelParams{
		PermissionOverwrites: &overwrites,
	}); err != nil {
		return apperrors.NewExternalError("Failed to publish this ticket. Please try again or contact an administrator.", err)
	}

	announcement := discord.MessageParams{Embeds: []discord.Embed{{
		Title:       "📢 Ticket Made Public",
		Description: "This ticket has been published to be viewable by everyone in the server.",
		Fields: []discord.EmbedField{
			{Name: "Reason", Value: reason},
			{Name: "Published by", Value: actor.Mention(), Inline: true},
		},
		Color:     0x3498db,
		Timestamp: discord.Timestamp(time.Now()),
	}}}
	if _, err := s.dc.CreateMessage(ctx, channelID, announcement); err != nil {
		return apperrors.NewExternalError("Failed to publish this ticket. Please try again or contact an administrator.", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketPublished,
		ChannelID: channelID,
		Actor:     events.Actor{ID: actor.ID, Tag: actor.Tag},
		Payload:   events.TicketPublishedPayload{Reason: reason},
	})
	return nil
}

// Summon grants a guild member access to the ticket. Returns added=false
// when the target can already view the channel, in which case nothing was
// edited.
func (s *TicketService) Summon(ctx context.Context, actor Identity, channelID, targetUserID string) (added bool, err error) {
	channel, err := s.dc.GetChannel(ctx, channelID)
	if err != nil {
		return false, apperrors.NewExternalError("Failed to add the user to this ticket.", err)
	}
	if !domain.IsTicketChannel(channel.Name) {
		return false, apperrors.NewPermissionDenied("This command can only be used in ticket channels.")
	}

	member, err := s.directory.Member(ctx, targetUserID)
	if err != nil {
		if discord.IsNotFound(err) {
			return false, apperrors.NewValidationError("That user is not a member of this server.")
		}
		return false, apperrors.NewExternalError("Failed to add the user to this ticket.", err)
	}
	roles, err := s.directory.Roles(ctx)
	if err != nil {
		return false, apperrors.NewExternalError("Failed to add the user to this ticket.", err)
	}

	perms := discord.ComputeChannelPermissions(s.cfg.GuildID, roles, member, channel)
	if perms&discord.PermViewChannel != 0 {
		return false, nil
	}

	grant := discord.MemberOverwrite(targetUserID,
		discord.PermViewChannel|discord.PermSendMessages|discord.PermReadMessageHistory, 0)
	if err := s.dc.EditChannelPermission(ctx, channelID, grant); err != nil {
		return false, apperrors.NewExternalError("Failed to add the user to this ticket.", err)
	}

	notice := fmt.Sprintf("👋 <@%s> has been added to this ticket by %s.", targetUserID, actor.Mention())
	if _, err := s.dc.CreateMessage(ctx, channelID, discord.MessageParams{Content: notice}); err != nil {
		s.logger.Warn("summon notice failed", zap.String("channel_id", channelID), zap.Error(err))
	}
	return true, nil
}

// Delete removes the ticket channel permanently. The confirm/cancel exchange
// happens entirely in the interaction layer; by the time this runs the
// destructive choice has been made.
func (s *TicketService) Delete(ctx context.Context, channelID string) error {
	if err := s.dc.DeleteChannel(ctx, channelID); err != nil {
		return apperrors.NewExternalError("Failed to delete the ticket channel.", err)
	}
	s.mu.Lock()
	delete(s.statuses, channelID)
	s.mu.Unlock()
	s.logger.Info("ticket channel deleted", zap.String("channel_id", channelID))
	return nil
}

// SetupPanel posts the ticket creation panel into the configured channel.
func (s *TicketService) SetupPanel(ctx context.Context) error {
	if s.cfg.PanelChannelID == "" {
		return apperrors.NewConfigError("Ticket panel channel is not configured. Please check your configuration.", nil)
	}
	if _, err := s.dc.GetChannel(ctx, s.cfg.PanelChannelID); err != nil {
		return apperrors.NewConfigError(
			fmt.Sprintf("Channel with ID %s not found. Please check your configuration.", s.cfg.PanelChannelID), err)
	}

	panel := discord.MessageParams{
		Embeds: []discord.Embed{{
			Title:       "🎫 Create a Support Ticket",
			Description: "Click the button below to create a new support ticket. Please provide as much detail as possible to help us assist you better.",
			Fields: []discord.EmbedField{
				{
					Name:  "📋 Available Categories",
					Value: "• **General** - General questions and support\n• **Bugs** - Report bugs or issues\n• **Suggestions** - Feature requests and suggestions",
				},
				{
					Name:  "📝 Required Information",
					Value: "• **Title** - Brief description of your issue\n• **Message** - Detailed explanation\n• **Category** - Select the appropriate category",
				},
			},
			Color:     0x3498db,
			Timestamp: discord.Timestamp(time.Now()),
			Footer:    &discord.EmbedFooter{Text: "Support Ticket System"},
		}},
		Components: []discord.Component{discord.ActionRow(discord.Component{
			Type:     discord.ComponentButton,
			CustomID: commands.CreateTicketButton,
			Label:    "Create Ticket",
			Style:    discord.ButtonStylePrimary,
			Emoji:    &discord.Emoji{Name: "🎫"},
		})},
	}
	if _, err := s.dc.CreateMessage(ctx, s.cfg.PanelChannelID, panel); err != nil {
		return apperrors.NewExternalError("Failed to setup ticket panel. Please check your configuration and try again.", err)
	}
	return nil
}

// Status reports the last lifecycle state recorded for a channel, falling
// back to deriving it from the given name.
func (s *TicketService) Status(channelID, channelName string) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.statuses[channelID]; ok {
		return status
	}
	return domain.StatusFromChannelName(channelName)
}

func (s *TicketService) recordStatus(channelID string, status domain.Status) {
	s.mu.Lock()
	s.statuses[channelID] = status
	s.mu.Unlock()
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

const memberTicketPerms = discord.PermViewChannel | discord.PermSendMessages | discord.PermReadMessageHistory

// createOverwrites is the initial overwrite set: everyone hidden, creator and
// staff inside, bot in control.
func createOverwrites(guildID, creatorID, staffRoleID, botID string) []discord.PermissionOverwrite {
	return []discord.PermissionOverwrite{
		discord.RoleOverwrite(guildID, 0, discord.PermViewChannel),
		discord.MemberOverwrite(creatorID, memberTicketPerms, 0),
		discord.RoleOverwrite(staffRoleID, memberTicketPerms|discord.PermManageMessages, 0),
		discord.MemberOverwrite(botID, memberTicketPerms|discord.PermManageChannels, 0),
	}
}

// closedOverwrites drops everyone but staff and the bot; the creator is
// deliberately not re-added.
func closedOverwrites(guildID, staffRoleID, botID string) []discord.PermissionOverwrite {
	return []discord.PermissionOverwrite{
		discord.RoleOverwrite(guildID, 0, discord.PermViewChannel),
		discord.RoleOverwrite(staffRoleID, memberTicketPerms, 0),
		discord.MemberOverwrite(botID, memberTicketPerms|discord.PermManageChannels, 0),
	}
}

// publicOverwrites opens the channel read-only to everyone; the creator, when
// known, is kept read-only as well.
func publicOverwrites(guildID, staffRoleID, botID, creatorID string) []discord.PermissionOverwrite {
	readOnly := discord.PermViewChannel | discord.PermReadMessageHistory
	overwrites := []discord.PermissionOverwrite{
		discord.RoleOverwrite(guildID, readOnly, discord.PermSendMessages),
		discord.RoleOverwrite(staffRoleID, memberTicketPerms|discord.PermManageMessages, 0),
		discord.MemberOverwrite(botID, memberTicketPerms|discord.PermManageChannels, 0),
	}
	if creatorID != "" {
		overwrites = append(overwrites, discord.MemberOverwrite(creatorID, readOnly, discord.PermSendMessages))
	}
	return overwrites
}
