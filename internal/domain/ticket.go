package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Category is the ticket category chosen at creation time.
type Category string

// Supported ticket categories.
const (
	CategoryGeneral     Category = "General"
	CategoryBugs        Category = "Bugs"
	CategorySuggestions Category = "Suggestions"
)

// Categories lists the fixed category set in panel order.
func Categories() []Category {
	return []Category{CategoryGeneral, CategoryBugs, CategorySuggestions}
}

// ParseCategory validates a raw category value against the fixed set.
func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case CategoryGeneral, CategoryBugs, CategorySuggestions:
		return Category(value), true
	}
	return "", false
}

// Color returns the embed accent color for the category.
func (c Category) Color() int {
	switch c {
	case CategoryGeneral:
		return 0x3498db
	case CategoryBugs:
		return 0xe74c3c
	case CategorySuggestions:
		return 0x2ecc71
	}
	return 0x95a5a6
}

// Status is the observable lifecycle state of a ticket channel, derived from
// the channel name prefix.
type Status string

// Ticket statuses.
const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusUnknown Status = ""
)

// Channel name prefixes encoding the ticket status.
const (
	TicketPrefix = "ticket-"
	ClosedPrefix = "closed-"
)

// StatusFromChannelName derives the ticket status from the channel name.
func StatusFromChannelName(name string) Status {
	switch {
	case strings.HasPrefix(name, TicketPrefix):
		return StatusOpen
	case strings.HasPrefix(name, ClosedPrefix):
		return StatusClosed
	}
	return StatusUnknown
}

// IsTicketChannel reports whether the channel name carries either ticket
// prefix, i.e. belongs to the ticket system at all.
func IsTicketChannel(name string) bool {
	return StatusFromChannelName(name) != StatusUnknown
}

var (
	invalidRuns    = regexp.MustCompile(`[^a-z0-9-_]+`)
	repeatedHyphen = regexp.MustCompile(`-{2,}`)
	creatorPattern = regexp.MustCompile(`creatorId:(\d{17,20})`)
)

// Sanitize normalizes a channel-name segment: lower-cases, replaces runs of
// characters outside [a-z0-9-_] with a single hyphen, collapses repeated
// hyphens, trims boundary hyphens, and caps the result at 24 characters.
// Truncation is followed by a second boundary trim so the invariant holds for
// every input.
func Sanitize(value string) string {
	s := strings.ToLower(value)
	s = invalidRuns.ReplaceAllString(s, "-")
	s = repeatedHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 24 {
		s = s[:24]
		s = strings.Trim(s, "-")
	}
	return s
}

// ChannelName builds the ticket channel name from its sanitized segments.
func ChannelName(category Category, username, suffix string) string {
	return TicketPrefix + Sanitize(string(category)) + "-" + Sanitize(username) + "-" + suffix
}

// ShortSuffix derives the 4-digit channel name suffix from a timestamp, the
// last four digits of its unix millisecond value.
func ShortSuffix(t time.Time) string {
	ms := t.UnixMilli()
	return fmt.Sprintf("%04d", ms%10000)
}

// Topic renders the channel topic embedding the immutable creator id and the
// category.
func Topic(creatorTag, creatorID string, category Category) string {
	return fmt.Sprintf("Ticket for %s | creatorId:%s | category:%s", creatorTag, creatorID, category)
}

// CreatorIDFromTopic recovers the creator id embedded in a channel topic.
func CreatorIDFromTopic(topic string) (string, bool) {
	match := creatorPattern.FindStringSubmatch(topic)
	if match == nil {
		return "", false
	}
	return match[1], true
}
