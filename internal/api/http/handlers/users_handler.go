package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tashkhees/support-portal/internal/api/dto"
	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/service"
)

// UsersHandler serves the admin user directory.
type UsersHandler struct {
	service *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directoryService *service.DirectoryService) *UsersHandler {
	return &UsersHandler{service: directoryService}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var role *domain.Role
	if q := c.Query("role"); q != "" {
		r := domain.Role(q)
		role = &r
	}
	users, counts, err := h.service.ListUsers(c.UserContext(), role)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(dto.OK(dto.DirectoryResponse{
		Users: items,
		Counts: dto.RoleCountsResponse{
			Total:      counts.Total,
			Admins:     counts.Admins,
			Developers: counts.Developers,
			Users:      counts.Users,
		},
	}))
}

// Developers GET /users/developers.
func (h *UsersHandler) Developers(c *fiber.Ctx) error {
	developers, err := h.service.ListDevelopers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(developers))
	for i := range developers {
		items = append(items, userResponse(&developers[i]))
	}
	return c.JSON(dto.OK(fiber.Map{"developers": items}))
}

// Workload GET /users/workload.
func (h *UsersHandler) Workload(c *fiber.Ctx) error {
	workloads, err := h.service.Workload(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.WorkloadResponse, 0, len(workloads))
	for _, w := range workloads {
		items = append(items, dto.WorkloadResponse{
			Developer:  userResponse(&w.Developer),
			Total:      w.Workload.Total,
			InProgress: w.Workload.InProgress,
			Completed:  w.Workload.Completed,
		})
	}
	return c.JSON(dto.OK(fiber.Map{"workload": items}))
}
