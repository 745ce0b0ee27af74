package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the production Discord REST endpoint.
const DefaultBaseURL = "https://discord.com/api/v10"

// APIError carries the status and body of a failed Discord REST call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api status %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error is a Discord 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// Client is a narrow REST client covering only the endpoints the ticket
// system consumes.
type Client struct {
	// BaseURL may be pointed at a test server.
	BaseURL string

	httpClient *http.Client
	token      string
	appID      string
	logger     *zap.Logger
}

// NewClient constructs a REST client authenticated as the bot.
func NewClient(token, appID string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      token,
		appID:      appID,
		logger:     logger,
	}
}

// CreateChannelParams describes a guild channel to create.
type CreateChannelParams struct {
	Name                 string                `json:"name"`
	Type                 int                   `json:"type"`
	Topic                string                `json:"topic,omitempty"`
	ParentID             string                `json:"parent_id,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// ModifyChannelParams describes a partial channel update. Nil fields are left
// untouched; a non-nil overwrite slice replaces the full set.
type ModifyChannelParams struct {
	Name                 *string                `json:"name,omitempty"`
	PermissionOverwrites *[]PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// MessageParams describes an outbound channel message.
type MessageParams struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// CreateGuildChannel creates a channel under the guild.
func (c *Client) CreateGuildChannel(ctx context.Context, guildID string, params CreateChannelParams) (*Channel, error) {
	var channel Channel
	path := fmt.Sprintf("/guilds/%s/channels", guildID)
	if err := c.do(ctx, http.MethodPost, path, params, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetChannel fetches a channel with its topic and permission overwrites.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	var channel Channel
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// ModifyChannel patches a channel's name and/or overwrite set.
func (c *Client) ModifyChannel(ctx context.Context, channelID string, params ModifyChannelParams) (*Channel, error) {
	var channel Channel
	if err := c.do(ctx, http.MethodPatch, "/channels/"+channelID, params, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// DeleteChannel removes a channel permanently.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	return c.do(ctx, http.MethodDelete, "/channels/"+channelID, nil, nil)
}

// EditChannelPermission upserts a single overwrite entry without touching the
// rest of the set.
func (c *Client) EditChannelPermission(ctx context.Context, channelID string, ow PermissionOverwrite) error {
	path := fmt.Sprintf("/channels/%s/permissions/%s", channelID, ow.ID)
	body := map[string]any{
		"type":  ow.Type,
		"allow": ow.Allow,
		"deny":  ow.Deny,
	}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// CreateMessage sends a message to a channel.
func (c *Client) CreateMessage(ctx context.Context, channelID string, params MessageParams) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.do(ctx, http.MethodPost, path, params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetChannelMessages fetches up to limit most recent messages, newest first.
func (c *Client) GetChannelMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	var msgs []Message
	path := fmt.Sprintf("/channels/%s/messages?limit=%s", channelID, strconv.Itoa(limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// GetGuildMember resolves a guild member by user id.
func (c *Client) GetGuildMember(ctx context.Context, guildID, userID string) (*Member, error) {
	var member Member
	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetGuildRoles lists the guild's roles.
func (c *Client) GetGuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	var roles []Role
	path := fmt.Sprintf("/guilds/%s/roles", guildID)
	if err := c.do(ctx, http.MethodGet, path, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// BulkOverwriteGuildCommands replaces the guild's slash command set.
func (c *Client) BulkOverwriteGuildCommands(ctx context.Context, guildID string, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/guilds/%s/commands", c.appID, guildID)
	return c.do(ctx, http.MethodPut, path, commands, nil)
}

// BulkOverwriteGlobalCommands replaces the global slash command set. Global
// registration can take up to an hour to propagate.
func (c *Client) BulkOverwriteGlobalCommands(ctx context.Context, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/commands", c.appID)
	return c.do(ctx, http.MethodPut, path, commands, nil)
}

// EditOriginalInteractionResponse edits the deferred or initial reply of an
// interaction after the fact.
func (c *Client) EditOriginalInteractionResponse(ctx context.Context, token string, data ResponseData) error {
	path := fmt.Sprintf("/webhooks/%s/%s/messages/@original", c.appID, token)
	return c.do(ctx, http.MethodPatch, path, data, nil)
}

// GetGateway checks API reachability; the endpoint requires no privileged
// scope and serves as the readiness probe target.
func (c *Client) GetGateway(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/gateway", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", "Lizard-Discord-Bot")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("discord api call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload))
		return &APIError{Status: resp.StatusCode, Body: string(payload)}
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
