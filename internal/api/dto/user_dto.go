package dto

import (
	"time"

	"github.com/tashkhees/support-portal/internal/domain"
)

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	LicenseKey string `json:"licenseKey" validate:"required"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateDeveloperRequest provisions a developer account.
type CreateDeveloperRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateProfileRequest carries optional profile changes. A new password
// requires the current one.
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	ProfilePicture  *string `json:"profilePicture,omitempty"`
	CurrentPassword string  `json:"currentPassword,omitempty"`
	NewPassword     *string `json:"newPassword,omitempty" validate:"omitempty,min=6"`
}

// UserResponse is the account resource.
type UserResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              domain.Role     `json:"role"`
	ProfilePicture    string          `json:"profilePicture,omitempty"`
	LicenseKey        *string         `json:"licenseKey,omitempty"`
	RegisteredProduct *domain.Product `json:"registeredProduct,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// SessionResponse pairs an account with a fresh token.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// RoleCountsResponse summarizes the directory by role.
type RoleCountsResponse struct {
	Total      int `json:"total"`
	Admins     int `json:"admins"`
	Developers int `json:"developers"`
	Users      int `json:"users"`
}

// DirectoryResponse is the admin user directory.
type DirectoryResponse struct {
	Users  []UserResponse     `json:"users"`
	Counts RoleCountsResponse `json:"counts"`
}

// WorkloadResponse reports one developer's ticket load.
type WorkloadResponse struct {
	Developer  UserResponse `json:"developer"`
	Total      int64        `json:"total"`
	InProgress int64        `json:"inProgress"`
	Completed  int64        `json:"completed"`
}
