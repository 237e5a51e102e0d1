package domain

import "time"

// TicketStatus enumerates pipeline states. The intended order is
// TO DO -> In Progress -> In Progress QA -> Completed -> Done, but the
// workflow does not enforce forward-only movement.
type TicketStatus string

const (
	TicketStatusToDo         TicketStatus = "TO DO"
	TicketStatusInProgress   TicketStatus = "In Progress"
	TicketStatusInProgressQA TicketStatus = "In Progress QA"
	TicketStatusCompleted    TicketStatus = "Completed"
	TicketStatusDone         TicketStatus = "Done"
)

// ValidTicketStatus reports whether the value is one of the five states.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusToDo, TicketStatusInProgress, TicketStatusInProgressQA, TicketStatusCompleted, TicketStatusDone:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// ValidTicketPriority reports whether the value is a known priority.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. TicketCode is the
// human-readable sequential identifier (TSK-NNNN) assigned at creation.
type Ticket struct {
	ID             string
	TicketCode     string
	UserID         *string
	UserName       string
	UserEmail      string
	Product        Product
	Subject        string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	AssignedTo     *string
	AssigneeName   *string
	AssigneeEmail  *string
	AttachmentPath *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusChange is one append-only entry of a ticket's status history.
// The first entry always reflects the creation-time status.
type StatusChange struct {
	ID            string
	TicketID      string
	Status        TicketStatus
	ChangedBy     *string
	ChangedByName *string
	ChangedAt     time.Time
}
