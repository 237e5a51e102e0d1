package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/events"
	"github.com/tashkhees/support-portal/internal/repository"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// TicketService implements the ticket lifecycle: creation, listing,
// assignment and status transitions.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.StatusHistoryRepository
	replies    repository.ReplyRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketServiceDeps wires the service.
type TicketServiceDeps struct {
	Tickets    repository.TicketRepository
	History    repository.StatusHistoryRepository
	Replies    repository.ReplyRepository
	Users      repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

func NewTicketService(deps TicketServiceDeps) *TicketService {
	return &TicketService{
		tickets:    deps.Tickets,
		history:    deps.History,
		replies:    deps.Replies,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicketInput is the public submission payload. UserID is nil for
// guests; the portal accepts tickets without an account.
type CreateTicketInput struct {
	UserID      *string
	UserName    string
	UserEmail   string
	Product     domain.Product
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Attachment  *string
}

// ListOptions are the caller-selected filters. Assignment filters only
// apply for admins; other roles have their scope forced.
type ListOptions struct {
	Status     *domain.TicketStatus
	Product    *domain.Product
	Priority   *domain.TicketPriority
	Search     *string
	AssignedTo *string
	Unassigned bool
}

// TicketList bundles the page with stats computed over the role scope.
// Stats ignore the user-selected filters on purpose: the dashboard
// counters describe the whole scope, not the filtered page.
type TicketList struct {
	Tickets []domain.Ticket
	Stats   repository.TicketStats
}

// TicketDetail is one ticket with its full audit trail.
type TicketDetail struct {
	Ticket  *domain.Ticket
	History []domain.StatusChange
	Replies []domain.Reply
}

// Create stores a new ticket, seeds its status history and fans out the
// creation event.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*domain.Ticket, error) {
	if !domain.ValidTicketProduct(in.Product) {
		return nil, apperrors.NewValidationError("invalid product", map[string]any{"product": in.Product})
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		UserID:         in.UserID,
		UserName:       in.UserName,
		UserEmail:      in.UserEmail,
		Product:        in.Product,
		Subject:        in.Subject,
		Description:    in.Description,
		Status:         domain.TicketStatusToDo,
		Priority:       priority,
		AttachmentPath: in.Attachment,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	seed := &domain.StatusChange{
		TicketID:  ticket.ID,
		Status:    ticket.Status,
		ChangedBy: in.UserID,
	}
	if err := s.history.Append(ctx, seed); err != nil {
		s.logger.Error("seeding status history failed", zap.String("ticketId", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, events.EventTicketCreated, *ticket, events.Actor{ID: in.UserID, Name: in.UserName, Role: domain.RoleUser}, nil)
	return ticket, nil
}

// ListForActor returns tickets visible to the actor plus scope-wide stats.
// Admins see everything, developers only their assignments, users only
// tickets filed under their own email.
func (s *TicketService) ListForActor(ctx context.Context, actor *domain.User, opts ListOptions) (*TicketList, error) {
	scope := repository.TicketFilter{}
	switch actor.Role {
	case domain.RoleAdmin:
		scope.AssignedTo = opts.AssignedTo
		scope.Unassigned = opts.Unassigned
	case domain.RoleDeveloper:
		id := actor.ID
		scope.AssignedTo = &id
	default:
		email := actor.Email
		scope.UserEmail = &email
	}

	filter := scope
	filter.Status = opts.Status
	filter.Product = opts.Product
	filter.Priority = opts.Priority
	filter.Search = opts.Search

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	statsScope := repository.TicketFilter{UserEmail: scope.UserEmail}
	if actor.Role == domain.RoleDeveloper {
		statsScope.AssignedTo = scope.AssignedTo
	}
	stats, err := s.tickets.Stats(ctx, statsScope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketList{Tickets: tickets, Stats: stats}, nil
}

// ListByEmail serves the public "my tickets" lookup used before login.
func (s *TicketService) ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{UserEmail: &email})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get loads one ticket with history and replies.
func (s *TicketService) Get(ctx context.Context, id string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	history, err := s.history.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	replies, err := s.replies.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, History: history, Replies: replies}, nil
}

// UpdateStatus moves a ticket to a new status. Any status can move to any
// other; the value just has to be one of the five known states.
// Developers may only touch tickets assigned to them.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleDeveloper {
		if ticket.AssignedTo == nil || *ticket.AssignedTo != actor.ID {
			return nil, apperrors.NewForbidden("You can only update tickets assigned to you")
		}
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.appendHistory(ctx, ticket.ID, newStatus, &actor.ID)

	// Fan-out mirrors the history append: every status set notifies,
	// including a same-status one.
	s.publish(ctx, events.EventStatusChanged, *ticket, actorFor(actor), events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return ticket, nil
}

// Assign puts a ticket on a developer's plate. Assigning an unassigned
// "TO DO" ticket also kicks it to "In Progress", attributed to the
// assigning admin in the history.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, developerID string) (*domain.Ticket, error) {
	developer, err := s.users.GetByID(ctx, developerID)
	if err != nil || developer.Role != domain.RoleDeveloper {
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		return nil, apperrors.NewValidationError("Invalid developer ID", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	wasUnassigned := ticket.AssignedTo == nil
	oldStatus := ticket.Status
	ticket.AssignedTo = &developer.ID
	ticket.AssigneeName = &developer.Name
	ticket.AssigneeEmail = &developer.Email
	if wasUnassigned && ticket.Status == domain.TicketStatusToDo {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		s.appendHistory(ctx, ticket.ID, ticket.Status, &actor.ID)
		s.publish(ctx, events.EventStatusChanged, *ticket, actorFor(actor), events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		})
	}
	s.publish(ctx, events.EventTicketAssigned, *ticket, actorFor(actor), events.TicketAssignedPayload{
		DeveloperID:    developer.ID,
		DeveloperName:  developer.Name,
		DeveloperEmail: developer.Email,
	})
	return ticket, nil
}

// Unassign takes a ticket off its developer. An "In Progress" ticket
// drops back to "TO DO". No notifications go out for unassignment.
func (s *TicketService) Unassign(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.AssignedTo = nil
	ticket.AssigneeName = nil
	ticket.AssigneeEmail = nil
	if ticket.Status == domain.TicketStatusInProgress {
		ticket.Status = domain.TicketStatusToDo
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != oldStatus {
		s.appendHistory(ctx, ticket.ID, ticket.Status, &actor.ID)
	}
	return ticket, nil
}

func (s *TicketService) appendHistory(ctx context.Context, ticketID string, status domain.TicketStatus, changedBy *string) {
	entry := &domain.StatusChange{TicketID: ticketID, Status: status, ChangedBy: changedBy}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Error("appending status history failed", zap.String("ticketId", ticketID), zap.Error(err))
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticket domain.Ticket, actor events.Actor, payload interface{}) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Ticket:    ticket,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func actorFor(user *domain.User) events.Actor {
	id := user.ID
	return events.Actor{ID: &id, Name: user.Name, Role: user.Role}
}
