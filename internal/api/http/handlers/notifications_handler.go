package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tashkhees/support-portal/internal/api/dto"
	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/service"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// NotificationsHandler serves the inbox endpoints. Inboxes are keyed by
// email; the authenticated routes use the principal's email while the
// public route takes it from the path so guests can poll theirs.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// Inbox GET /notifications.
func (h *NotificationsHandler) Inbox(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	return h.renderInbox(c, principal.Email)
}

// InboxByEmail GET /notifications/email/:email. Public for guest ticket
// filers who have no account to authenticate with.
func (h *NotificationsHandler) InboxByEmail(c *fiber.Ctx) error {
	return h.renderInbox(c, strings.ToLower(c.Params("email")))
}

func (h *NotificationsHandler) renderInbox(c *fiber.Ctx, email string) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	notifications, unread, err := h.service.Inbox(c.UserContext(), email, limit)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, notificationResponse(&notifications[i]))
	}
	return c.JSON(dto.OK(dto.InboxResponse{Notifications: items, UnreadCount: unread}))
}

// MarkRead PATCH /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	notification, err := h.service.MarkRead(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(notificationResponse(notification)))
}

// MarkAllRead PATCH /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	if err := h.service.MarkAllRead(c.UserContext(), principal.Email); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("All notifications marked as read", nil))
}

// Delete DELETE /notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), principal.Email); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Notification deleted", nil))
}

// Clear DELETE /notifications.
func (h *NotificationsHandler) Clear(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	if err := h.service.Clear(c.UserContext(), principal.Email); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Notifications cleared", nil))
}
