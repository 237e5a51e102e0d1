package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/events"
	"github.com/tashkhees/support-portal/internal/mail"
	"github.com/tashkhees/support-portal/internal/realtime"
	"github.com/tashkhees/support-portal/internal/repository"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// NotificationService consumes ticket events and fans each one out to
// three sinks: the persistent inbox, live websocket channels and email.
// Every sink is best-effort; a failure is logged and never propagates
// back to the write that triggered the event.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	hub           *realtime.Hub
	mailer        mail.Mailer
	logger        *zap.Logger
}

// NotificationServiceDeps wires the service.
type NotificationServiceDeps struct {
	Notifications repository.NotificationRepository
	Users         repository.UserRepository
	Hub           *realtime.Hub
	Mailer        mail.Mailer
	Logger        *zap.Logger
}

func NewNotificationService(deps NotificationServiceDeps) *NotificationService {
	return &NotificationService{
		notifications: deps.Notifications,
		users:         deps.Users,
		hub:           deps.Hub,
		mailer:        deps.Mailer,
		logger:        deps.Logger,
	}
}

// RegisterHandlers subscribes the fan-out handlers on the dispatcher.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
	dispatcher.Subscribe(events.EventStatusChanged, s.handleStatusChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, s.handleTicketAssigned)
	dispatcher.Subscribe(events.EventReplyAdded, s.handleReplyAdded)
}

// notificationPayload is the wire shape pushed over the websocket. It
// mirrors the REST resource so clients render both the same way.
type notificationPayload struct {
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

func toPayload(n *domain.Notification) notificationPayload {
	return notificationPayload{
		ID:           n.ID,
		UserEmail:    n.UserEmail,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		TicketID:     n.TicketID,
		TicketNumber: n.TicketNumber,
		IsRead:       n.IsRead,
		Metadata:     n.Metadata,
		CreatedAt:    n.CreatedAt,
	}
}

func (s *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	ticket := event.Ticket
	s.createAndPush(ctx, &domain.Notification{
		UserEmail:    ticket.UserEmail,
		UserID:       ticket.UserID,
		Type:         domain.NotificationTicketCreated,
		Title:        "Ticket Created: " + ticket.TicketCode,
		Message:      fmt.Sprintf("Your support ticket %q has been received", ticket.Subject),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketCode,
	})
	s.sendEmail(&ticket, mail.TicketCreated)
	s.notifyAdmins(ctx, &ticket, "new_ticket",
		"New Ticket: "+ticket.TicketCode,
		fmt.Sprintf("%s submitted a new %s ticket: %q", ticket.UserName, ticket.Priority, ticket.Subject))
	return nil
}

func (s *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	ticket := event.Ticket
	s.createAndPush(ctx, &domain.Notification{
		UserEmail:    ticket.UserEmail,
		UserID:       ticket.UserID,
		Type:         domain.NotificationStatusChange,
		Title:        "Ticket " + ticket.TicketCode + " Updated",
		Message:      fmt.Sprintf("Your ticket %q moved from %s to %s", ticket.Subject, payload.OldStatus, payload.NewStatus),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketCode,
		Metadata: domain.NotificationMeta{
			OldStatus: string(payload.OldStatus),
			NewStatus: string(payload.NewStatus),
		},
	})
	s.sendEmail(&ticket, func(t *domain.Ticket) (string, string) {
		return mail.StatusChanged(t, payload.OldStatus, payload.NewStatus)
	})
	// Developers working a ticket keep the admins in the loop too.
	if event.Actor.Role == domain.RoleDeveloper {
		s.notifyAdmins(ctx, &ticket, "status_change",
			"Ticket "+ticket.TicketCode+" status changed",
			fmt.Sprintf("%s moved %q from %s to %s", event.Actor.Name, ticket.Subject, payload.OldStatus, payload.NewStatus))
	}
	return nil
}

func (s *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	ticket := event.Ticket

	s.createAndPush(ctx, &domain.Notification{
		UserEmail:    ticket.UserEmail,
		UserID:       ticket.UserID,
		Type:         domain.NotificationTicketAssigned,
		Title:        "Ticket " + ticket.TicketCode + " Assigned",
		Message:      fmt.Sprintf("Your ticket has been assigned to %s", payload.DeveloperName),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketCode,
		Metadata: domain.NotificationMeta{
			AssignedBy: event.Actor.Name,
			AssignedTo: payload.DeveloperName,
		},
	})
	s.createAndPush(ctx, &domain.Notification{
		UserEmail:    payload.DeveloperEmail,
		UserID:       &payload.DeveloperID,
		Type:         domain.NotificationTicketAssigned,
		Title:        "New Ticket Assigned: " + ticket.TicketCode,
		Message:      fmt.Sprintf("You have been assigned to ticket %q", ticket.Subject),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketCode,
		Metadata: domain.NotificationMeta{
			AssignedBy: event.Actor.Name,
			Priority:   string(ticket.Priority),
		},
	})
	s.sendEmail(&ticket, func(t *domain.Ticket) (string, string) {
		return mail.TicketAssigned(t, payload.DeveloperName)
	})
	return nil
}

func (s *NotificationService) handleReplyAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReplyAddedPayload)
	if !ok {
		return nil
	}
	ticket := event.Ticket
	if payload.SenderRole == domain.RoleUser {
		// Customer replied: route to staff, not back to the customer.
		s.notifyAdmins(ctx, &ticket, "user_reply",
			"New Reply: "+ticket.TicketCode,
			fmt.Sprintf("%s replied to ticket %q", payload.SenderName, ticket.Subject))
		return nil
	}
	s.createAndPush(ctx, &domain.Notification{
		UserEmail:    ticket.UserEmail,
		UserID:       ticket.UserID,
		Type:         domain.NotificationCommentAdded,
		Title:        "New Reply on " + ticket.TicketCode,
		Message:      fmt.Sprintf("%s replied to your ticket %q", payload.SenderName, ticket.Subject),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketCode,
	})
	s.sendEmail(&ticket, func(t *domain.Ticket) (string, string) {
		return mail.ReplyAdded(t, payload.SenderName, payload.Preview)
	})
	return nil
}

// createAndPush persists one inbox entry, then pushes it to the
// recipient's live channel together with their fresh unread count.
func (s *NotificationService) createAndPush(ctx context.Context, n *domain.Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Error("notification create failed",
			zap.String("email", n.UserEmail),
			zap.String("type", string(n.Type)),
			zap.Error(err))
		return
	}
	unread, err := s.notifications.CountUnread(ctx, n.UserEmail)
	if err != nil {
		s.logger.Warn("unread count failed", zap.String("email", n.UserEmail), zap.Error(err))
	}
	s.hub.Publish(ctx, n.UserEmail, realtime.Message{
		Event: "notification",
		Data: map[string]any{
			"notification": toPayload(n),
			"unreadCount":  unread,
		},
	})
}

// notifyAdmins writes one inbox entry per admin account and broadcasts a
// compact summary on the shared admin channel.
func (s *NotificationService) notifyAdmins(ctx context.Context, ticket *domain.Ticket, kind, title, message string) {
	admins, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.logger.Error("listing admins failed", zap.Error(err))
		return
	}
	notifType := domain.NotificationTicketCreated
	if kind == "user_reply" {
		notifType = domain.NotificationCommentAdded
	} else if kind == "status_change" {
		notifType = domain.NotificationStatusChange
	}
	for i := range admins {
		admin := admins[i]
		s.createAndPush(ctx, &domain.Notification{
			UserEmail:    admin.Email,
			UserID:       &admin.ID,
			Type:         notifType,
			Title:        title,
			Message:      message,
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketCode,
			Metadata:     domain.NotificationMeta{Priority: string(ticket.Priority)},
		})
	}
	s.hub.Publish(ctx, realtime.AdminChannel, realtime.Message{
		Event: "admin_notification",
		Data: map[string]any{
			"type": kind,
			"ticket": map[string]any{
				"id":         ticket.ID,
				"ticketCode": ticket.TicketCode,
				"subject":    ticket.Subject,
				"priority":   ticket.Priority,
				"status":     ticket.Status,
				"userName":   ticket.UserName,
			},
		},
	})
}

// sendEmail dispatches the template asynchronously so SMTP latency never
// blocks the request path.
func (s *NotificationService) sendEmail(ticket *domain.Ticket, build func(*domain.Ticket) (string, string)) {
	t := *ticket
	go func() {
		subject, body := build(&t)
		if err := s.mailer.Send(t.UserEmail, subject, body); err != nil {
			s.logger.Error("notification email failed",
				zap.String("to", t.UserEmail),
				zap.String("ticketCode", t.TicketCode),
				zap.Error(err))
		}
	}()
}

// Inbox returns the recipient's newest notifications and unread count.
func (s *NotificationService) Inbox(ctx context.Context, email string, limit int) ([]domain.Notification, int64, error) {
	notifications, err := s.notifications.ListByEmail(ctx, email, limit)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	unread, err := s.notifications.CountUnread(ctx, email)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return notifications, unread, nil
}

// MarkRead flips one notification to read. Already-read entries succeed
// unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	notification, err := s.notifications.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Notification", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return notification, nil
}

// MarkAllRead clears the unread flag across the recipient's inbox.
func (s *NotificationService) MarkAllRead(ctx context.Context, email string) error {
	if err := s.notifications.MarkAllRead(ctx, email); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Delete removes one notification, scoped to the owner's email so one
// recipient cannot delete another's entries.
func (s *NotificationService) Delete(ctx context.Context, id, email string) error {
	if err := s.notifications.DeleteOwned(ctx, id, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Notification", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Clear empties the recipient's inbox.
func (s *NotificationService) Clear(ctx context.Context, email string) error {
	if err := s.notifications.DeleteAllForEmail(ctx, email); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
