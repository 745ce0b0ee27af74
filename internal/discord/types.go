package discord

import (
	"strconv"
	"time"
)

// Channel types used by the bot.
const (
	ChannelTypeGuildText     = 0
	ChannelTypeGuildCategory = 4
)

// Component types.
const (
	ComponentActionRow  = 1
	ComponentButton     = 2
	ComponentSelectMenu = 3
	ComponentTextInput  = 4
)

// Button styles.
const (
	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleDanger    = 4
)

// Text input styles.
const (
	TextInputShort     = 1
	TextInputParagraph = 2
)

// discordEpoch is the Discord snowflake epoch in milliseconds (2015-01-01).
const discordEpoch = 1420070400000

// User is a Discord user.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// Tag renders the historical username#discriminator form, or the plain
// username for accounts migrated off discriminators.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// Mention renders the user as a channel mention.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Member is a guild member as delivered inside interaction payloads and
// member lookups.
type Member struct {
	User        *User    `json:"user,omitempty"`
	Nick        string   `json:"nick,omitempty"`
	Roles       []string `json:"roles"`
	Permissions string   `json:"permissions,omitempty"`
}

// DisplayName prefers the guild nickname over the account username.
func (m *Member) DisplayName() string {
	if m == nil {
		return ""
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.Username
	}
	return ""
}

// HasRole reports whether the member carries the given role id.
func (m *Member) HasRole(roleID string) bool {
	if m == nil || roleID == "" {
		return false
	}
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// Role is a guild role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Permissions string `json:"permissions"`
}

// PermissionOverwrite maps a principal to an (allow, deny) capability pair.
// Type 0 targets a role, type 1 targets a member. The bitfields travel as
// decimal strings on the wire.
type PermissionOverwrite struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

// Overwrite principal types.
const (
	OverwriteRole   = 0
	OverwriteMember = 1
)

// Channel is a guild channel.
type Channel struct {
	ID                   string                `json:"id"`
	Type                 int                   `json:"type"`
	GuildID              string                `json:"guild_id,omitempty"`
	Name                 string                `json:"name,omitempty"`
	Topic                string                `json:"topic,omitempty"`
	ParentID             string                `json:"parent_id,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// CreatedAt derives the channel creation time from its snowflake id.
func (c *Channel) CreatedAt() time.Time {
	return SnowflakeTime(c.ID)
}

// Mention renders the channel as a clickable reference.
func (c *Channel) Mention() string {
	return "<#" + c.ID + ">"
}

// Attachment is a message attachment.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Message is a channel message.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	Author      User         `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Embed and its parts follow the Discord embed object.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField is a single name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the embed footer line.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Component is a flattened message component. Which fields apply depends on
// Type; unused fields are omitted on the wire.
type Component struct {
	Type        int            `json:"type"`
	CustomID    string         `json:"custom_id,omitempty"`
	Label       string         `json:"label,omitempty"`
	Style       int            `json:"style,omitempty"`
	Emoji       *Emoji         `json:"emoji,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	Value       string         `json:"value,omitempty"`
	MinLength   int            `json:"min_length,omitempty"`
	MaxLength   int            `json:"max_length,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Components  []Component    `json:"components,omitempty"`
}

// Emoji decorates a button label.
type Emoji struct {
	Name string `json:"name"`
}

// SelectOption is one entry of a select menu.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// ActionRow wraps components into a row container.
func ActionRow(components ...Component) Component {
	return Component{Type: ComponentActionRow, Components: components}
}

// SnowflakeTime extracts the creation timestamp encoded in a snowflake id.
// Returns the zero time for unparseable input.
func SnowflakeTime(id string) time.Time {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	ms := int64(n>>22) + discordEpoch
	return time.UnixMilli(ms).UTC()
}

// Timestamp renders a time in the ISO8601 form embeds expect.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
