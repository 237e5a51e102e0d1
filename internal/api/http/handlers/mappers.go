package handlers

import (
	"github.com/tashkhees/support-portal/internal/api/dto"
	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/repository"
	"github.com/tashkhees/support-portal/internal/service"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		ProfilePicture:    u.ProfilePicture,
		LicenseKey:        u.LicenseKey,
		RegisteredProduct: u.RegisteredProduct,
		CreatedAt:         u.CreatedAt,
	}
}

func sessionResponse(s *service.Session) dto.SessionResponse {
	return dto.SessionResponse{
		User:      userResponse(s.User),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

func licenseResponse(k *domain.LicenseKey) dto.LicenseResponse {
	return dto.LicenseResponse{
		ID:        k.ID,
		Code:      k.Code,
		Product:   k.Product,
		IsUsed:    k.IsUsed,
		UsedBy:    k.UsedBy,
		UsedAt:    k.UsedAt,
		ExpiresAt: k.ExpiresAt,
		Notes:     k.Notes,
		CreatedAt: k.CreatedAt,
	}
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:          t.ID,
		TicketCode:  t.TicketCode,
		UserName:    t.UserName,
		UserEmail:   t.UserEmail,
		Product:     t.Product,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Attachment:  t.AttachmentPath,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		assignee := dto.AssigneeResponse{ID: *t.AssignedTo}
		if t.AssigneeName != nil {
			assignee.Name = *t.AssigneeName
		}
		if t.AssigneeEmail != nil {
			assignee.Email = *t.AssigneeEmail
		}
		resp.AssignedTo = &assignee
	}
	return resp
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func statusChangeResponse(sc *domain.StatusChange) dto.StatusChangeResponse {
	return dto.StatusChangeResponse{
		Status:        sc.Status,
		ChangedBy:     sc.ChangedBy,
		ChangedByName: sc.ChangedByName,
		ChangedAt:     sc.ChangedAt,
	}
}

func replyResponse(r *domain.Reply) dto.ReplyResponse {
	return dto.ReplyResponse{
		ID:         r.ID,
		SenderRole: r.SenderRole,
		SenderName: r.SenderName,
		Message:    r.Message,
		Attachment: r.AttachmentPath,
		CreatedAt:  r.CreatedAt,
	}
}

// ticketStatsResponse renders the counter block. The assignment and
// priority breakdowns only show for admins.
func ticketStatsResponse(stats repository.TicketStats, admin bool) dto.TicketStatsResponse {
	resp := dto.TicketStatsResponse{
		Total:        stats.Total,
		ToDo:         stats.ToDo,
		InProgress:   stats.InProgress,
		InProgressQA: stats.InProgressQA,
		Completed:    stats.Completed,
		Done:         stats.Done,
	}
	if admin {
		resp.Unassigned = &stats.Unassigned
		resp.Critical = &stats.Critical
		resp.High = &stats.High
		resp.Medium = &stats.Medium
		resp.Low = &stats.Low
	}
	return resp
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
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
