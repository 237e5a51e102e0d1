package dto

import (
	"time"

	"github.com/tashkhees/support-portal/internal/domain"
)

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID           string                  `json:"id"`
	UserEmail    string                  `json:"userEmail"`
	Type         domain.NotificationType `json:"type"`
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	TicketID     string                  `json:"ticketId"`
	TicketNumber string                  `json:"ticketNumber"`
	IsRead       bool                    `json:"isRead"`
	Metadata     domain.NotificationMeta `json:"metadata"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// InboxResponse is the recipient's inbox page.
type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}
