package domain

import "time"

// MaxReplyLength caps reply message size in characters.
const MaxReplyLength = 2000

// Reply is an append-only message on a ticket thread. Replies are never
// mutated or deleted once created.
type Reply struct {
	ID             string
	TicketID       string
	SenderRole     Role
	SenderName     string
	SenderID       *string
	Message        string
	AttachmentPath *string
	CreatedAt      time.Time
}
