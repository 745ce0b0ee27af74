package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/auth"
	"github.com/lizardlabs/ticketbot/internal/commands"
	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/domain"
	"github.com/lizardlabs/ticketbot/internal/observability"
	"github.com/lizardlabs/ticketbot/internal/service"
	apperrors "github.com/lizardlabs/ticketbot/pkg/util"
)

// InteractionsHandler routes inbound interaction events to the ticket
// lifecycle engine and the issue conversion service. Every branch validates
// actor permissions and channel context before any state change, and converts
// its own failures into an ephemeral notice so nothing propagates to the
// event loop.
type InteractionsHandler struct {
	tickets   *service.TicketService
	converter *service.ConvertService
	dc        *discord.Client
	cfg       config.DiscordConfig
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewInteractionsHandler constructs the handler.
func NewInteractionsHandler(tickets *service.TicketService, converter *service.ConvertService, dc *discord.Client, cfg config.DiscordConfig, logger *zap.Logger, metrics *observability.Metrics) *InteractionsHandler {
	return &InteractionsHandler{
		tickets:   tickets,
		converter: converter,
		dc:        dc,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Handle POST /interactions.
func (h *InteractionsHandler) Handle(c *fiber.Ctx) error {
	var interaction discord.Interaction
	if err := json.Unmarshal(c.Body(), &interaction); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	ctx := c.UserContext()
	var resp *discord.InteractionResponse
	switch interaction.Type {
	case discord.InteractionPing:
		resp = &discord.InteractionResponse{Type: discord.ResponsePong}
	case discord.InteractionApplicationCommand, discord.InteractionMessageComponent, discord.InteractionModalSubmit:
		if interaction.Data == nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		resp = h.dispatch(ctx, &interaction)
	default:
		resp = h.failure("interaction", apperrors.NewUnknownInteraction(fmt.Sprintf("type %d", interaction.Type)))
	}
	return c.JSON(resp)
}

func (h *InteractionsHandler) dispatch(ctx context.Context, interaction *discord.Interaction) *discord.InteractionResponse {
	switch interaction.Type {
	case discord.InteractionApplicationCommand:
		return h.handleCommand(ctx, interaction)
	case discord.InteractionMessageComponent:
		return h.handleComponent(ctx, interaction)
	default:
		return h.handleModal(ctx, interaction)
	}
}

func (h *InteractionsHandler) handleCommand(ctx context.Context, i *discord.Interaction) *discord.InteractionResponse {
	route := i.Data.Name
	h.metrics.RecordInteraction("command", route)

	var resp *discord.InteractionResponse
	var err error
	switch route {
	case commands.SetupTicketPanel:
		resp, err = h.setupPanel(ctx, i)
	case commands.DeleteTicket:
		resp, err = h.deleteTicketPrompt(ctx, i)
	case commands.TicketPublish:
		resp, err = h.publish(ctx, i)
	case commands.TicketSummon:
		resp, err = h.summon(ctx, i)
	case commands.ConvertToGithub:
		resp, err = h.convert(ctx, i)
	default:
		err = apperrors.NewUnknownInteraction(route)
	}
	if err != nil {
		return h.failure(route, err)
	}
	return resp
}

func (h *InteractionsHandler) handleComponent(ctx context.Context, i *discord.Interaction) *discord.InteractionResponse {
	route := i.Data.CustomID
	h.metrics.RecordInteraction("component", route)

	var resp *discord.InteractionResponse
	var err error
	switch route {
	case commands.CreateTicketButton:
		resp = categorySelectResponse()
	case commands.CategorySelect:
		resp, err = h.categoryChosen(i)
	case commands.CloseTicketButton:
		resp, err = h.closeTicket(ctx, i)
	case commands.ConfirmDeleteButton:
		resp, err = h.confirmDelete(ctx, i)
	case commands.CancelDeleteButton:
		resp = updateResponse("❌ Ticket deletion cancelled.")
	default:
		err = apperrors.NewUnknownInteraction(route)
	}
	if err != nil {
		return h.failure(route, err)
	}
	return resp
}

func (h *InteractionsHandler) handleModal(ctx context.Context, i *discord.Interaction) *discord.InteractionResponse {
	route := i.Data.CustomID
	h.metrics.RecordInteraction("modal", route)

	category, ok := commands.ParseTicketModalID(route)
	if !ok {
		return h.failure(route, apperrors.NewUnknownInteraction(route))
	}
	resp, err := h.createTicket(i, category)
	if err != nil {
		return h.failure(route, err)
	}
	return resp
}

// categorySelectResponse presents the fixed category menu.
func categorySelectResponse() *discord.InteractionResponse {
	options := make([]discord.SelectOption, 0, 3)
	for _, category := range domain.Categories() {
		options = append(options, discord.SelectOption{
			Label: string(category),
			Value: string(category),
		})
	}
	return &discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.ResponseData{
			Content: "Select a category for your ticket:",
			Flags:   discord.FlagEphemeral,
			Components: []discord.Component{discord.ActionRow(discord.Component{
				Type:        discord.ComponentSelectMenu,
				CustomID:    commands.CategorySelect,
				Placeholder: "Choose a category",
				Options:     options,
			})},
		},
	}
}

// categoryChosen answers a category selection with the creation form, the
// chosen category tagged into the modal's custom id so it survives the round
// trip without server-side state.
func (h *InteractionsHandler) categoryChosen(i *discord.Interaction) (*discord.InteractionResponse, error) {
	if len(i.Data.Values) == 0 {
		return nil, apperrors.NewValidationError("Invalid category. Please use: General, Bugs, or Suggestions")
	}
	category, ok := domain.ParseCategory(i.Data.Values[0])
	if !ok {
		return nil, apperrors.NewValidationError("Invalid category. Please use: General, Bugs, or Suggestions")
	}

	return &discord.InteractionResponse{
		Type: discord.ResponseModal,
		Data: &discord.ResponseData{
			CustomID: commands.TicketModalID(string(category)),
			Title:    "Create Support Ticket",
			Components: []discord.Component{
				discord.ActionRow(discord.Component{
					Type:        discord.ComponentTextInput,
					CustomID:    commands.TitleInput,
					Label:       "Ticket Title",
					Style:       discord.TextInputShort,
					Placeholder: "Brief description of your issue",
					Required:    true,
					MaxLength:   100,
				}),
				discord.ActionRow(discord.Component{
					Type:        discord.ComponentTextInput,
					CustomID:    commands.MessageInput,
					Label:       "Detailed Message",
					Style:       discord.TextInputParagraph,
					Placeholder: "Please provide detailed information about your issue, bug report, or suggestion...",
					Required:    true,
					MaxLength:   1000,
				}),
			},
		},
	}, nil
}

// createTicket validates the submitted form, acknowledges immediately, and
// runs the creation asynchronously; the deferred reply is edited with the
// outcome.
func (h *InteractionsHandler) createTicket(i *discord.Interaction, category string) (*discord.InteractionResponse, error) {
	parsed, ok := domain.ParseCategory(category)
	if !ok {
		return nil, apperrors.NewValidationError("Invalid category. Please use: General, Bugs, or Suggestions")
	}
	title := i.Data.TextInputValue(commands.TitleInput)
	message := i.Data.TextInputValue(commands.MessageInput)
	if title == "" || message == "" {
		return nil, apperrors.NewValidationError("Please provide both a title and a message.")
	}

	actor := service.IdentityFrom(i.ActorUser())
	token := i.Token
	go func() {
		ctx := context.Background()
		channel, err := h.tickets.Create(ctx, actor, service.CreateTicketInput{
			Category: parsed,
			Title:    title,
			Message:  message,
		})
		content := "❌ Failed to create ticket. Please try again or contact an administrator."
		if err == nil {
			content = "✅ Ticket created successfully! Check " + channel.Mention()
		} else {
			h.logFailure("ticket create", err)
		}
		h.editReply(ctx, token, content)
	}()

	return ephemeralResponse("⏳ Creating your ticket..."), nil
}

func (h *InteractionsHandler) closeTicket(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	actor := service.IdentityFrom(i.ActorUser())
	if err := h.tickets.Close(ctx, actor, i.ChannelID); err != nil {
		return nil, err
	}
	return ephemeralResponse("✅ Ticket closed successfully. The channel has been archived."), nil
}

func (h *InteractionsHandler) setupPanel(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	if err := auth.RequireAdmin(i.Member); err != nil {
		return nil, err
	}
	if err := h.tickets.SetupPanel(ctx); err != nil {
		return nil, err
	}
	return ephemeralResponse("✅ Ticket panel has been set up in <#" + h.cfg.PanelChannelID + ">"), nil
}

// deleteTicketPrompt renders the confirm/cancel choice. The prompt itself is
// the only record of the pending delete; no server-side state exists.
func (h *InteractionsHandler) deleteTicketPrompt(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	if err := h.requireTicketChannel(ctx, i); err != nil {
		return nil, err
	}
	if err := auth.RequireStaff(i.Member, h.cfg.StaffRoleID, "delete tickets"); err != nil {
		return nil, err
	}

	return &discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.ResponseData{
			Content: "⚠️ **Warning**: This will permanently delete this ticket channel and all its messages. This action cannot be undone.",
			Flags:   discord.FlagEphemeral,
			Components: []discord.Component{discord.ActionRow(
				discord.Component{
					Type:     discord.ComponentButton,
					CustomID: commands.ConfirmDeleteButton,
					Label:    "Delete Ticket",
					Style:    discord.ButtonStyleDanger,
					Emoji:    &discord.Emoji{Name: "🗑️"},
				},
				discord.Component{
					Type:     discord.ComponentButton,
					CustomID: commands.CancelDeleteButton,
					Label:    "Cancel",
					Style:    discord.ButtonStyleSecondary,
					Emoji:    &discord.Emoji{Name: "❌"},
				},
			)},
		},
	}, nil
}

// confirmDelete acknowledges the prompt, then issues the destructive delete
// after the response is on its way; deleting first would orphan the
// acknowledgment.
func (h *InteractionsHandler) confirmDelete(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	if err := auth.RequireStaff(i.Member, h.cfg.StaffRoleID, "delete tickets"); err != nil {
		return nil, err
	}
	channelID := i.ChannelID
	go func() {
		if err := h.tickets.Delete(context.Background(), channelID); err != nil {
			h.logFailure("ticket delete", err)
		}
	}()
	return updateResponse("🗑️ Deleting this ticket channel..."), nil
}

func (h *InteractionsHandler) publish(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	if err := auth.RequireStaff(i.Member, h.cfg.StaffRoleID, "publish tickets"); err != nil {
		return nil, err
	}
	reason := i.Data.OptionString("reason")
	actor := service.IdentityFrom(i.ActorUser())
	if err := h.tickets.Publish(ctx, actor, i.ChannelID, reason); err != nil {
		return nil, err
	}
	return ephemeralResponse("✅ Ticket has been made public and replies have been locked (staff can still post)."), nil
}

func (h *InteractionsHandler) summon(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	if err := auth.RequireStaff(i.Member, h.cfg.StaffRoleID, "add users to tickets"); err != nil {
		return nil, err
	}
	targetID := i.Data.OptionString("user")
	if targetID == "" {
		return nil, apperrors.NewValidationError("Please specify a valid user.")
	}
	actor := service.IdentityFrom(i.ActorUser())
	added, err := h.tickets.Summon(ctx, actor, i.ChannelID, targetID)
	if err != nil {
		return nil, err
	}
	if !added {
		return ephemeralResponse("ℹ️ <@" + targetID + "> already has access to this ticket."), nil
	}
	return ephemeralResponse("✅ Added <@" + targetID + "> to this ticket."), nil
}

// convert defers the reply and runs the conversion asynchronously; building
// the transcript alone can take several round trips.
func (h *InteractionsHandler) convert(ctx context.Context, i *discord.Interaction) (*discord.InteractionResponse, error) {
	if err := auth.RequireStaff(i.Member, h.cfg.StaffRoleID, "convert tickets to GitHub issues"); err != nil {
		return nil, err
	}
	if !h.converter.Enabled() {
		return nil, apperrors.NewConfigError("GitHub integration is not configured. Please contact an administrator.", nil)
	}

	title := i.Data.OptionString("title")
	description := i.Data.OptionString("description")
	actor := service.IdentityFrom(i.ActorUser())
	channelID := i.ChannelID
	token := i.Token
	go func() {
		bg := context.Background()
		issue, err := h.converter.Convert(bg, actor, channelID, title, description)
		content := "❌ Failed to create GitHub issue. Please check your GitHub configuration."
		if err == nil {
			content = fmt.Sprintf("✅ Successfully converted ticket to GitHub issue!\n🔗 [View Issue #%d](%s)", issue.Number, issue.HTMLURL)
		} else {
			h.logFailure("github convert", err)
		}
		h.editReply(bg, token, content)
	}()

	return &discord.InteractionResponse{
		Type: discord.ResponseDeferredChannelMessage,
		Data: &discord.ResponseData{Flags: discord.FlagEphemeral},
	}, nil
}

// requireTicketChannel rejects interactions outside ticket/closed channels.
func (h *InteractionsHandler) requireTicketChannel(ctx context.Context, i *discord.Interaction) error {
	name := ""
	if i.Channel != nil {
		name = i.Channel.Name
	}
	if name == "" {
		channel, err := h.dc.GetChannel(ctx, i.ChannelID)
		if err != nil {
			return apperrors.NewExternalError("An unexpected error occurred. Please try again.", err)
		}
		name = channel.Name
	}
	if !domain.IsTicketChannel(name) {
		return apperrors.NewPermissionDenied("This command can only be used in ticket channels.")
	}
	return nil
}

func (h *InteractionsHandler) editReply(ctx context.Context, token, content string) {
	if err := h.dc.EditOriginalInteractionResponse(ctx, token, discord.ResponseData{Content: content}); err != nil {
		h.logger.Warn("failed to edit interaction reply", zap.Error(err))
	}
}

// failure converts an error into the actor-visible ephemeral notice and logs
// the technical detail separately.
func (h *InteractionsHandler) failure(route string, err error) *discord.InteractionResponse {
	domainErr := apperrors.ToDomainError(err)
	h.metrics.RecordError(route, domainErr.Code)
	h.logger.Warn("interaction failed",
		zap.String("route", route),
		zap.String("code", domainErr.Code),
		zap.Error(domainErr))
	return ephemeralResponse("❌ " + domainErr.Message)
}

func (h *InteractionsHandler) logFailure(action string, err error) {
	domainErr := apperrors.ToDomainError(err)
	h.logger.Error(action+" failed",
		zap.String("code", domainErr.Code),
		zap.Error(domainErr))
}

func ephemeralResponse(content string) *discord.InteractionResponse {
	return &discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.ResponseData{Content: content, Flags: discord.FlagEphemeral},
	}
}

// updateResponse rewrites the message the clicked component was attached to,
// clearing its buttons.
func updateResponse(content string) *discord.InteractionResponse {
	return &discord.InteractionResponse{
		Type: discord.ResponseUpdateMessage,
		Data: &discord.ResponseData{Content: content, Components: []discord.Component{}},
	}
}
