package dto

import (
	"time"

	"github.com/tashkhees/support-portal/internal/domain"
)

// CreateTicketRequest is the public submission payload. Multipart form
// fields map onto it; the optional attachment rides alongside.
type CreateTicketRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	Product     string `json:"product" form:"product" validate:"required"`
	Subject     string `json:"subject" form:"subject" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required,max=2000"`
	Priority    string `json:"priority" form:"priority"`
}

// UpdateStatusRequest moves a ticket to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignTicketRequest puts a ticket on a developer.
type AssignTicketRequest struct {
	DeveloperID string `json:"developerId" validate:"required"`
}

// AddReplyRequest appends to the conversation thread.
type AddReplyRequest struct {
	Message string `json:"message" form:"message" validate:"required,max=2000"`
}

// AssigneeResponse is the embedded developer summary on a ticket.
type AssigneeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketResponse is the ticket resource.
type TicketResponse struct {
	ID          string                `json:"id"`
	TicketCode  string                `json:"ticketCode"`
	UserName    string                `json:"userName"`
	UserEmail   string                `json:"userEmail"`
	Product     domain.Product        `json:"product"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	AssignedTo  *AssigneeResponse     `json:"assignedTo,omitempty"`
	Attachment  *string               `json:"attachment,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// StatusChangeResponse is one history entry.
type StatusChangeResponse struct {
	Status        domain.TicketStatus `json:"status"`
	ChangedBy     *string             `json:"changedBy,omitempty"`
	ChangedByName *string             `json:"changedByName,omitempty"`
	ChangedAt     time.Time           `json:"changedAt"`
}

// ReplyResponse is one thread entry.
type ReplyResponse struct {
	ID         string      `json:"id"`
	SenderRole domain.Role `json:"senderRole"`
	SenderName string      `json:"senderName"`
	Message    string      `json:"message"`
	Attachment *string     `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// TicketDetailResponse is a ticket with its audit trail.
type TicketDetailResponse struct {
	TicketResponse
	StatusHistory []StatusChangeResponse `json:"statusHistory"`
	Replies       []ReplyResponse        `json:"replies"`
}

// TicketStatsResponse carries the dashboard counters. Assignment and
// priority breakdowns only appear on admin responses.
type TicketStatsResponse struct {
	Total        int64  `json:"total"`
	ToDo         int64  `json:"toDo"`
	InProgress   int64  `json:"inProgress"`
	InProgressQA int64  `json:"inProgressQA"`
	Completed    int64  `json:"completed"`
	Done         int64  `json:"done"`
	Unassigned   *int64 `json:"unassigned,omitempty"`
	Critical     *int64 `json:"critical,omitempty"`
	High         *int64 `json:"high,omitempty"`
	Medium       *int64 `json:"medium,omitempty"`
	Low          *int64 `json:"low,omitempty"`
}

// TicketListResponse is a listing page with scope stats.
type TicketListResponse struct {
	Tickets []TicketResponse    `json:"tickets"`
	Stats   TicketStatsResponse `json:"stats"`
}
