package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/config"
	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/events"
)

// NotificationService posts a ticket-created notification to the configured
// external webhook. Delivery is fire-and-forget: at most one attempt, no
// retry, failures only logged. A retry here could pair with a user retry to
// produce duplicate notifications downstream.
type NotificationService struct {
	httpClient *http.Client
	cfg        config.WebhookConfig
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.WebhookConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cfg:        cfg,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	if n.cfg.URL == "" {
		n.logger.Debug("no webhook URL configured, skipping notification")
		return nil
	}

	body := map[string]any{
		"content": n.formatMessage(payload.Title, event.Actor.Tag, string(payload.Category)),
		"embeds": []discord.Embed{{
			Title:       "🎫 New Ticket: " + payload.Title,
			Description: payload.Message,
			Fields: []discord.EmbedField{
				{Name: "Category", Value: string(payload.Category), Inline: true},
				{Name: "Submitted by", Value: event.Actor.Tag, Inline: true},
				{Name: "Channel", Value: "<#" + event.ChannelID + ">", Inline: true},
			},
			Color:     payload.Category.Color(),
			Timestamp: discord.Timestamp(time.Now()),
		}},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		n.logger.Warn("webhook payload encoding failed", zap.Error(err))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(encoded))
	if err != nil {
		n.logger.Warn("webhook request build failed", zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("failed to send webhook notification", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		n.logger.Warn("webhook notification rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("url", n.cfg.URL))
		return nil
	}
	n.logger.Info("webhook notification sent", zap.String("channel_id", event.ChannelID))
	return nil
}

// formatMessage substitutes the {title}/{user}/{category} placeholders in the
// configured message template.
func (n *NotificationService) formatMessage(title, user, category string) string {
	msg := n.cfg.MessageTemplate
	msg = strings.ReplaceAll(msg, "{title}", title)
	msg = strings.ReplaceAll(msg, "{user}", user)
	msg = strings.ReplaceAll(msg, "{category}", category)
	return msg
}
