package discord

// Interaction types delivered to the interactions endpoint.
const (
	InteractionPing               = 1
	InteractionApplicationCommand = 2
	InteractionMessageComponent   = 3
	InteractionModalSubmit        = 5
)

// Interaction response types.
const (
	ResponsePong                     = 1
	ResponseChannelMessage           = 4
	ResponseDeferredChannelMessage   = 5
	ResponseDeferredMessageUpdate    = 6
	ResponseUpdateMessage            = 7
	ResponseModal                    = 9
)

// FlagEphemeral marks a response message visible only to the actor.
const FlagEphemeral = 1 << 6

// Interaction is the inbound event envelope.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          int              `json:"type"`
	Token         string           `json:"token"`
	GuildID       string           `json:"guild_id,omitempty"`
	ChannelID     string           `json:"channel_id,omitempty"`
	Channel       *Channel         `json:"channel,omitempty"`
	Member        *Member          `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
	Data          *InteractionData `json:"data,omitempty"`
}

// ActorUser returns the user behind the interaction regardless of whether it
// arrived from a guild (member) or DM (user) context.
func (i *Interaction) ActorUser() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionData carries the type-specific payload: command name and options
// for slash commands, custom id and values for components, custom id and
// component rows for modal submissions.
type InteractionData struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name,omitempty"`
	CustomID      string          `json:"custom_id,omitempty"`
	ComponentType int             `json:"component_type,omitempty"`
	Values        []string        `json:"values,omitempty"`
	Options       []CommandOption `json:"options,omitempty"`
	Components    []Component     `json:"components,omitempty"`
}

// CommandOption is a slash command option value. The bot only defines string
// and user options, both of which travel as JSON strings.
type CommandOption struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	Value string `json:"value"`
}

// OptionString returns the named option value, or "" when absent.
func (d *InteractionData) OptionString(name string) string {
	if d == nil {
		return ""
	}
	for _, opt := range d.Options {
		if opt.Name == name {
			return opt.Value
		}
	}
	return ""
}

// TextInputValue returns the value of a modal text input by custom id.
func (d *InteractionData) TextInputValue(customID string) string {
	if d == nil {
		return ""
	}
	for _, row := range d.Components {
		for _, comp := range row.Components {
			if comp.CustomID == customID {
				return comp.Value
			}
		}
	}
	return ""
}

// InteractionResponse is the JSON document returned to Discord.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the response payload. Content/Embeds/Components/Flags apply
// to message responses; CustomID/Title/Components apply to modal responses.
// Components has no omitempty: an update-message response clears the original
// buttons by sending an explicit empty array, which omitempty would drop.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components"`
	Flags      int         `json:"flags,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Title      string      `json:"title,omitempty"`
}

// Application command option types used by the bot.
const (
	CommandOptionString = 3
	CommandOptionUser   = 6
)

// ApplicationCommand is a slash command definition for bulk registration.
type ApplicationCommand struct {
	Name                     string                     `json:"name"`
	Description              string                     `json:"description"`
	Options                  []ApplicationCommandOption `json:"options,omitempty"`
	DefaultMemberPermissions string                     `json:"default_member_permissions,omitempty"`
}

// ApplicationCommandOption declares one option of a slash command.
type ApplicationCommandOption struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
}
