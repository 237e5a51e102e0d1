package service

import (
	"context"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/repository"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// DirectoryService serves the admin user directory and developer
// workload views.
type DirectoryService struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
}

func NewDirectoryService(users repository.UserRepository, tickets repository.TicketRepository) *DirectoryService {
	return &DirectoryService{users: users, tickets: tickets}
}

// RoleCounts breaks the directory down by role.
type RoleCounts struct {
	Total      int
	Admins     int
	Developers int
	Users      int
}

// ListUsers returns the directory, optionally filtered by role, plus
// role counts over the filtered set.
func (s *DirectoryService) ListUsers(ctx context.Context, role *domain.Role) ([]domain.User, RoleCounts, error) {
	var (
		users []domain.User
		err   error
	)
	if role != nil {
		users, err = s.users.ListByRole(ctx, *role)
	} else {
		users, err = s.users.List(ctx)
	}
	if err != nil {
		return nil, RoleCounts{}, apperrors.MapError(err)
	}
	counts := RoleCounts{Total: len(users)}
	for i := range users {
		switch users[i].Role {
		case domain.RoleAdmin:
			counts.Admins++
		case domain.RoleDeveloper:
			counts.Developers++
		default:
			counts.Users++
		}
	}
	return users, counts, nil
}

// ListDevelopers returns assignable developer accounts.
func (s *DirectoryService) ListDevelopers(ctx context.Context) ([]domain.User, error) {
	developers, err := s.users.ListByRole(ctx, domain.RoleDeveloper)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return developers, nil
}

// DeveloperWithWorkload pairs a developer with their ticket counts.
type DeveloperWithWorkload struct {
	Developer domain.User
	Workload  repository.DeveloperWorkload
}

// Workload reports per-developer ticket load for the assignment screen.
func (s *DirectoryService) Workload(ctx context.Context) ([]DeveloperWithWorkload, error) {
	developers, err := s.users.ListByRole(ctx, domain.RoleDeveloper)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]DeveloperWithWorkload, 0, len(developers))
	for _, dev := range developers {
		load, err := s.tickets.Workload(ctx, dev.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, DeveloperWithWorkload{Developer: dev, Workload: load})
	}
	return result, nil
}
