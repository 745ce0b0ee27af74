package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/domain"
	"github.com/lizardlabs/ticketbot/internal/events"
	"github.com/lizardlabs/ticketbot/internal/github"
	apperrors "github.com/lizardlabs/ticketbot/pkg/util"
)

// transcriptLimit caps how much history goes into an issue.
const transcriptLimit = 100

// ConvertDependencies bundles collaborators for the conversion service.
type ConvertDependencies struct {
	Discord    *discord.Client
	Directory  *GuildDirectory
	GitHub     *github.Client
	Dispatcher events.Dispatcher
	Config     config.DiscordConfig
	Logger     *zap.Logger
}

// ConvertService turns a ticket channel into an issue-tracker entry: it
// renders the transcript, resolves participants, creates the remote issue,
// and announces the result in the channel.
type ConvertService struct {
	dc         *discord.Client
	directory  *GuildDirectory
	gh         *github.Client
	dispatcher events.Dispatcher
	cfg        config.DiscordConfig
	logger     *zap.Logger
}

// NewConvertService constructs the service.
func NewConvertService(deps ConvertDependencies) *ConvertService {
	return &ConvertService{
		dc:         deps.Discord,
		directory:  deps.Directory,
		gh:         deps.GitHub,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     deps.Logger,
	}
}

// Enabled reports whether issue conversion is configured.
func (s *ConvertService) Enabled() bool {
	return s.gh.Enabled()
}

// Convert creates the issue. From a ticket channel the body carries channel
// metadata, the transcript, and the participant breakdown; from any other
// channel only a minimal note. A nil issue with an error means the issue was
// not created; the caller renders a notice and moves on.
func (s *ConvertService) Convert(ctx context.Context, actor Identity, channelID, title, description string) (*github.Issue, error) {
	if !s.gh.Enabled() {
		return nil, apperrors.NewConfigError("GitHub integration is not configured. Please contact an administrator.", nil)
	}

	channel, err := s.dc.GetChannel(ctx, channelID)
	if err != nil {
		return nil, apperrors.NewExternalError("Failed to convert ticket to GitHub issue. Please try again.", err)
	}

	var body string
	var participants []domain.Participant
	if domain.IsTicketChannel(channel.Name) {
		messages, err := s.dc.GetChannelMessages(ctx, channelID, transcriptLimit)
		if err != nil {
			return nil, apperrors.NewExternalError("Failed to convert ticket to GitHub issue. Please try again.", err)
		}
		chronological := reverseMessages(messages)
		parentName := s.parentName(ctx, channel)
		participants = s.resolveParticipants(ctx, channel, chronological)
		transcript := renderTranscript(channel, parentName, chronological)
		body = formatIssueBody(description, channel, parentName, participants, transcript)
	} else {
		body = formatMinimalBody(description, channel)
	}

	issue, err := s.gh.CreateIssue(ctx, title, body)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, channel, actor, title, issue, participants)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketConverted,
		ChannelID: channelID,
		Actor:     events.Actor{ID: actor.ID, Tag: actor.Tag},
		Payload:   events.TicketConvertedPayload{IssueNumber: issue.Number, IssueURL: issue.HTMLURL},
	})
	return issue, nil
}

// resolveParticipants scans the message history for non-bot authors with a
// resolvable membership, keyed by user id with the first occurrence winning,
// then assigns the creator flag from the topic or the overwrite fallback.
func (s *ConvertService) resolveParticipants(ctx context.Context, channel *discord.Channel, messages []discord.Message) []domain.Participant {
	set := domain.NewParticipantSet()
	seen := make(map[string]bool)
	for _, msg := range messages {
		if msg.Author.Bot || seen[msg.Author.ID] {
			continue
		}
		seen[msg.Author.ID] = true
		member, err := s.directory.Member(ctx, msg.Author.ID)
		if err != nil {
			continue
		}
		set.Add(domain.Participant{
			ID:          msg.Author.ID,
			Username:    msg.Author.Username,
			DisplayName: member.DisplayName(),
			IsStaff:     member.HasRole(s.cfg.StaffRoleID),
		})
	}

	creatorID, ok := domain.CreatorIDFromTopic(channel.Topic)
	if !ok {
		creatorID = s.directory.CreatorFromOverwrites(ctx, channel, s.cfg.StaffRoleID, s.cfg.AppID)
	}
	if creatorID != "" {
		set.MarkCreator(creatorID)
	}
	return set.List()
}

func (s *ConvertService) parentName(ctx context.Context, channel *discord.Channel) string {
	if channel.ParentID == "" {
		return "Unknown"
	}
	parent, err := s.dc.GetChannel(ctx, channel.ParentID)
	if err != nil {
		return "Unknown"
	}
	return parent.Name
}

// announce posts the conversion embed into the channel. The issue already
// exists at this point, so a failed announcement is only logged; retrying the
// whole conversion would create a duplicate issue.
func (s *ConvertService) announce(ctx context.Context, channel *discord.Channel, actor Identity, title string, issue *github.Issue, participants []domain.Participant) {
	fields := []discord.EmbedField{
		{Name: "📋 Issue Title", Value: title},
		{Name: "🔗 GitHub Issue", Value: fmt.Sprintf("[View Issue #%d](%s)", issue.Number, issue.HTMLURL), Inline: true},
		{Name: "🆔 Issue ID", Value: fmt.Sprintf("#%d", issue.Number), Inline: true},
		{Name: "👤 Converted by", Value: actor.Tag, Inline: true},
	}
	creators, staff, _ := groupParticipants(participants)
	if len(creators) > 0 {
		fields = append(fields, discord.EmbedField{Name: "🎫 Original Reporter", Value: joinDisplayNames(creators), Inline: true})
	}
	if len(staff) > 0 {
		fields = append(fields, discord.EmbedField{Name: "👥 Staff Involved", Value: joinDisplayNames(staff), Inline: true})
	}

	embed := discord.Embed{
		Title:       "🎫 Ticket Converted to GitHub Issue",
		Description: "This ticket has been converted to a developer issue for better tracking and resolution.",
		Fields:      fields,
		Color:       0x2ea043,
		Timestamp:   discord.Timestamp(time.Now()),
		Footer:      &discord.EmbedFooter{Text: "GitHub Issue Conversion"},
	}
	if _, err := s.dc.CreateMessage(ctx, channel.ID, discord.MessageParams{Embeds: []discord.Embed{embed}}); err != nil {
		s.logger.Warn("conversion announcement failed",
			zap.String("channel_id", channel.ID),
			zap.Int("issue", issue.Number),
			zap.Error(err))
	}
}

func (s *ConvertService) publishEvent(ctx context.Context, event events.Event) {
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

// renderTranscript renders the chronological message history with one
// `**author** - <timestamp>` line per message followed by content and any
// attachment links.
func renderTranscript(channel *discord.Channel, parentName string, messages []discord.Message) string {
	var b strings.Builder
	b.WriteString("# Discord Ticket Transcript\n\n")
	fmt.Fprintf(&b, "**Channel:** %s\n", channel.Name)
	fmt.Fprintf(&b, "**Created:** %s\n", channel.CreatedAt().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Category:** %s\n\n", parentName)
	b.WriteString("---\n\n")

	for _, msg := range messages {
		content := msg.Content
		if content == "" {
			content = "*[No text content]*"
		}
		fmt.Fprintf(&b, "**%s** - %s\n", msg.Author.Username, msg.Timestamp.UTC().Format(time.RFC3339))
		b.WriteString(content)
		b.WriteString("\n\n")
		if len(msg.Attachments) > 0 {
			for _, att := range msg.Attachments {
				fmt.Fprintf(&b, "📎 [%s](%s)\n", att.Filename, att.URL)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatIssueBody(description string, channel *discord.Channel, parentName string, participants []domain.Participant, transcript string) string {
	var b strings.Builder
	if description != "" {
		fmt.Fprintf(&b, "## Additional Description\n%s\n\n", description)
	}

	b.WriteString("## Discord Ticket Information\n")
	fmt.Fprintf(&b, "- **Channel:** %s\n", channel.Name)
	fmt.Fprintf(&b, "- **Category:** %s\n", parentName)
	fmt.Fprintf(&b, "- **Created:** %s\n\n", channel.CreatedAt().Format(time.RFC3339))

	if len(participants) > 0 {
		b.WriteString("## Ticket Participants\n\n")
		creators, staff, others := groupParticipants(participants)
		writeParticipantGroup(&b, "Ticket Creator", creators)
		writeParticipantGroup(&b, "Staff Members", staff)
		writeParticipantGroup(&b, "Other Participants", others)
	}

	b.WriteString("## Ticket Transcript\n\n")
	fmt.Fprintf(&b, "```markdown\n%s\n```", transcript)
	return b.String()
}

func formatMinimalBody(description string, channel *discord.Channel) string {
	var b strings.Builder
	if description != "" {
		fmt.Fprintf(&b, "## Additional Description\n%s\n\n", description)
	}
	b.WriteString("## Discord Channel Information\n")
	fmt.Fprintf(&b, "- **Channel:** %s\n\n", channel.Name)
	b.WriteString("Created from this channel; no ticket transcript available.\n")
	return b.String()
}

func groupParticipants(participants []domain.Participant) (creators, staff, others []domain.Participant) {
	for _, p := range participants {
		switch {
		case p.IsCreator:
			creators = append(creators, p)
		case p.IsStaff:
			staff = append(staff, p)
		default:
			others = append(others, p)
		}
	}
	return creators, staff, others
}

func joinDisplayNames(group []domain.Participant) string {
	names := make([]string, 0, len(group))
	for _, p := range group {
		names = append(names, p.DisplayName)
	}
	return strings.Join(names, ", ")
}

func writeParticipantGroup(b *strings.Builder, heading string, group []domain.Participant) {
	if len(group) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", heading)
	for _, p := range group {
		fmt.Fprintf(b, "- %s (@%s)\n", p.DisplayName, p.Username)
	}
	b.WriteString("\n")
}

func reverseMessages(messages []discord.Message) []discord.Message {
	out := make([]discord.Message, len(messages))
	for i, msg := range messages {
		out[len(messages)-1-i] = msg
	}
	return out
}
