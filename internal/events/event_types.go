package events

import (
	"time"

	"github.com/tashkhees/support-portal/internal/domain"
)

// EventType enumerates ticket lifecycle events.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventStatusChanged  EventType = "ticket_status_changed"
	EventTicketAssigned EventType = "ticket_assigned"
	EventReplyAdded     EventType = "ticket_reply_added"
)

// Actor identifies who triggered an event. Nil ID means an anonymous
// (guest) ticket creator.
type Actor struct {
	ID   *string     `json:"id,omitempty"`
	Name string      `json:"name,omitempty"`
	Role domain.Role `json:"role,omitempty"`
}

// Event is a domain event emitted by services after the primary write has
// committed. Subscribers must treat delivery as best-effort: a failing
// handler never rolls back the write that produced the event.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Ticket    domain.Ticket `json:"ticket"`
	Actor     Actor         `json:"actor"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   interface{}   `json:"payload,omitempty"`
}

// StatusChangedPayload carries the transition endpoints.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload carries the new assignee.
type TicketAssignedPayload struct {
	DeveloperID    string `json:"developer_id"`
	DeveloperName  string `json:"developer_name"`
	DeveloperEmail string `json:"developer_email"`
}

// ReplyAddedPayload carries the reply metadata.
type ReplyAddedPayload struct {
	ReplyID    string      `json:"reply_id"`
	SenderRole domain.Role `json:"sender_role"`
	SenderName string      `json:"sender_name"`
	Preview    string      `json:"preview"`
}
