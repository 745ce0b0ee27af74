package events

import (
	"time"

	"github.com/lizardlabs/ticketbot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketClosed    EventType = "ticket_closed"
	EventTicketPublished EventType = "ticket_published"
	EventTicketConverted EventType = "ticket_converted"
)

// Actor identifies the user behind a lifecycle transition.
type Actor struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

// Event represents a lifecycle event emitted by the ticket services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChannelID string      `json:"channel_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Category domain.Category `json:"category"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ChannelName string `json:"channel_name"`
}

// TicketPublishedPayload payload.
type TicketPublishedPayload struct {
	Reason string `json:"reason"`
}

// TicketConvertedPayload payload.
type TicketConvertedPayload struct {
	IssueNumber int    `json:"issue_number"`
	IssueURL    string `json:"issue_url"`
}
