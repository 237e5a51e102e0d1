package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tashkhees/support-portal/internal/api/dto"
	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/config"
	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/service"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// TicketsHandler serves the ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	replies *service.ReplyService
	uploads config.UploadConfig
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, replies *service.ReplyService, uploads config.UploadConfig) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, replies: replies, uploads: uploads}
}

// Create POST /tickets. Public: anyone can file a ticket, with or without
// an account. Accepts JSON or multipart with an optional attachment.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	attachment, err := saveAttachment(c, h.uploads)
	if err != nil {
		return err
	}

	input := service.CreateTicketInput{
		UserName:    req.Name,
		UserEmail:   req.Email,
		Product:     domain.Product(req.Product),
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		Attachment:  attachment,
	}
	// Logged-in users get the ticket linked to their account.
	if principal, ok := auth.PrincipalFromContext(c); ok {
		id := principal.ID
		input.UserID = &id
	}
	ticket, err := h.tickets.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("Ticket created", ticketResponse(ticket)))
}

// List GET /tickets. Scope depends on the caller's role.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	opts := parseListOptions(c, principal.Role == domain.RoleAdmin)
	list, err := h.tickets.ListForActor(c.UserContext(), principal, opts)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.TicketListResponse{
		Tickets: ticketResponses(list.Tickets),
		Stats:   ticketStatsResponse(list.Stats, principal.Role == domain.RoleAdmin),
	}))
}

// ListAll GET /tickets/all. Admin dashboard view, no filters applied.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	list, err := h.tickets.ListForActor(c.UserContext(), principal, service.ListOptions{})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.TicketListResponse{
		Tickets: ticketResponses(list.Tickets),
		Stats:   ticketStatsResponse(list.Stats, true),
	}))
}

// ListByEmail GET /tickets/user/:email. Public lookup so guests can check
// their tickets without an account.
func (h *TicketsHandler) ListByEmail(c *fiber.Ctx) error {
	email := strings.ToLower(c.Params("email"))
	tickets, err := h.tickets.ListByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"tickets": ticketResponses(tickets)}))
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.TicketDetailResponse{TicketResponse: ticketResponse(detail.Ticket)}
	resp.StatusHistory = make([]dto.StatusChangeResponse, 0, len(detail.History))
	for i := range detail.History {
		resp.StatusHistory = append(resp.StatusHistory, statusChangeResponse(&detail.History[i]))
	}
	resp.Replies = make([]dto.ReplyResponse, 0, len(detail.Replies))
	for i := range detail.Replies {
		resp.Replies = append(resp.Replies, replyResponse(&detail.Replies[i]))
	}
	return c.JSON(dto.OK(resp))
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), principal, c.Params("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Ticket status updated", ticketResponse(ticket)))
}

// Assign PATCH /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	ticket, err := h.tickets.Assign(c.UserContext(), principal, c.Params("id"), req.DeveloperID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Ticket assigned", ticketResponse(ticket)))
}

// Unassign PATCH /tickets/:id/unassign.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	ticket, err := h.tickets.Unassign(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Ticket unassigned", ticketResponse(ticket)))
}

// AddReply POST /tickets/:id/replies.
func (h *TicketsHandler) AddReply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	var req dto.AddReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	attachment, err := saveAttachment(c, h.uploads)
	if err != nil {
		return err
	}
	reply, err := h.replies.Add(c.UserContext(), principal, c.Params("id"), req.Message, attachment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("Reply added", replyResponse(reply)))
}

func parseListOptions(c *fiber.Ctx, admin bool) service.ListOptions {
	opts := service.ListOptions{}
	if status := c.Query("status"); status != "" {
		s := domain.TicketStatus(status)
		opts.Status = &s
	}
	if product := c.Query("product"); product != "" {
		p := domain.Product(product)
		opts.Product = &p
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.TicketPriority(priority)
		opts.Priority = &p
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		opts.Search = &search
	}
	if admin {
		if assignedTo := c.Query("assignedTo"); assignedTo != "" {
			opts.AssignedTo = &assignedTo
		}
		opts.Unassigned = c.Query("unassigned") == "true"
	}
	return opts
}
