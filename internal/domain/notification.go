package domain

import "time"

// NotificationType enumerates ticket lifecycle notification kinds.
type NotificationType string

const (
	NotificationTicketCreated  NotificationType = "ticket_created"
	NotificationStatusChange   NotificationType = "status_change"
	NotificationTicketAssigned NotificationType = "ticket_assigned"
	NotificationCommentAdded   NotificationType = "comment_added"
	NotificationTicketResolved NotificationType = "ticket_resolved"
)

// NotificationMeta carries event context for display.
type NotificationMeta struct {
	OldStatus  string `json:"oldStatus,omitempty"`
	NewStatus  string `json:"newStatus,omitempty"`
	AssignedBy string `json:"assignedBy,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

// Notification is a persisted inbox entry. Addressing is by email, not
// user id, so guests who filed tickets before registering still see their
// history. TicketNumber denormalizes the human ticket code for display.
type Notification struct {
	ID           string
	UserEmail    string
	UserID       *string
	Type         NotificationType
	Title        string
	Message      string
	TicketID     string
	TicketNumber string
	IsRead       bool
	Metadata     NotificationMeta
	CreatedAt    time.Time
}
