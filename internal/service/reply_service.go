package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/events"
	"github.com/tashkhees/support-portal/internal/repository"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

const replyPreviewLength = 100

// ReplyService appends entries to ticket conversation threads.
type ReplyService struct {
	replies    repository.ReplyRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func NewReplyService(replies repository.ReplyRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ReplyService {
	return &ReplyService{replies: replies, tickets: tickets, dispatcher: dispatcher, logger: logger}
}

// Add appends a reply. Sender identity comes from the authenticated
// principal, never from the request body. The reply bumps the ticket's
// updated_at so active threads float to the top of listings.
func (s *ReplyService) Add(ctx context.Context, actor *domain.User, ticketID, message string, attachment *string) (*domain.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("Reply message is required", nil)
	}
	if utf8.RuneCountInString(message) > domain.MaxReplyLength {
		return nil, apperrors.NewValidationError("Reply message is too long", map[string]any{"maxLength": domain.MaxReplyLength})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	senderID := actor.ID
	reply := &domain.Reply{
		TicketID:       ticket.ID,
		SenderRole:     actor.Role,
		SenderName:     actor.Name,
		SenderID:       &senderID,
		Message:        message,
		AttachmentPath: attachment,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
		s.logger.Warn("ticket touch after reply failed", zap.String("ticketId", ticket.ID), zap.Error(err))
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventReplyAdded,
		Ticket:    *ticket,
		Actor:     actorFor(actor),
		Timestamp: time.Now().UTC(),
		Payload: events.ReplyAddedPayload{
			ReplyID:    reply.ID,
			SenderRole: actor.Role,
			SenderName: actor.Name,
			Preview:    preview(message),
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", zap.String("type", string(events.EventReplyAdded)), zap.Error(err))
	}
	return reply, nil
}

func preview(message string) string {
	runes := []rune(message)
	if len(runes) <= replyPreviewLength {
		return message
	}
	return string(runes[:replyPreviewLength]) + "..."
}
