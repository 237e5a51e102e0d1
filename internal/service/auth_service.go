package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/repository"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

const invalidCredentialsMsg = "Invalid credentials"

// AuthService covers registration, login and account management.
type AuthService struct {
	users    repository.UserRepository
	licenses *LicenseService
	tokens   *auth.TokenManager
	bcrypt   int
	logger   *zap.Logger
}

// AuthServiceDeps wires the service.
type AuthServiceDeps struct {
	Users      repository.UserRepository
	Licenses   *LicenseService
	Tokens     *auth.TokenManager
	BcryptCost int
	Logger     *zap.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	return &AuthService{
		users:    deps.Users,
		licenses: deps.Licenses,
		tokens:   deps.Tokens,
		bcrypt:   deps.BcryptCost,
		logger:   deps.Logger,
	}
}

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	LicenseKey string
}

// Session pairs an authenticated user with a fresh token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register validates the license key, creates the account, then burns the
// key. A redeem failure after the account exists is logged, not returned:
// the account is already real at that point.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	code := strings.TrimSpace(in.LicenseKey)
	if code == "" {
		return nil, apperrors.NewValidationError("License key is required", nil)
	}
	key, err := s.licenses.byCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("Invalid license key. Please check your key and try again.", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if ok, reason := key.Redeemable(time.Now()); !ok {
		return nil, apperrors.NewValidationError(reason, nil)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewValidationError("User already exists with this email", nil)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcrypt)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	product := key.Product
	user := &domain.User{
		Name:              strings.TrimSpace(in.Name),
		Email:             email,
		PasswordHash:      hash,
		Role:              domain.RoleUser,
		LicenseKey:        &key.Code,
		RegisteredProduct: &product,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.licenses.Redeem(ctx, key.ID, user.ID); err != nil {
		s.logger.Error("license redeem after registration failed",
			zap.String("userId", user.ID),
			zap.String("licenseId", key.ID),
			zap.Error(err))
	}

	return s.issueSession(user)
}

// Login checks credentials. Unknown email and wrong password are
// deliberately indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthenticationError(invalidCredentialsMsg)
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewAuthenticationError(invalidCredentialsMsg)
	}
	return s.issueSession(user)
}

// CreateDeveloper provisions a developer account without a license key.
func (s *AuthService) CreateDeveloper(ctx context.Context, name, email, password string) (*domain.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.users.GetByEmail(ctx, normalized); err == nil && existing != nil {
		return nil, apperrors.NewConflict("A user with this email already exists", nil)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(password, s.bcrypt)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        normalized,
		PasswordHash: hash,
		Role:         domain.RoleDeveloper,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteDeveloper removes a developer account. Accounts with other roles
// are refused so the endpoint cannot delete admins or customers.
func (s *AuthService) DeleteDeveloper(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Developer", nil)
		}
		return apperrors.MapError(err)
	}
	if user.Role != domain.RoleDeveloper {
		return apperrors.NewValidationError("User is not a developer", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	ProfilePicture  *string
	CurrentPassword string
	NewPassword     *string
}

// UpdateProfile applies self-service profile changes. A password change
// requires the current password to match first.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if upd.NewPassword != nil && *upd.NewPassword != "" {
		if upd.CurrentPassword == "" {
			return nil, apperrors.NewValidationError("Current password is required to set a new password", nil)
		}
		if err := auth.ComparePassword(user.PasswordHash, upd.CurrentPassword); err != nil {
			return nil, apperrors.NewAuthenticationError("Current password is incorrect")
		}
		hash, err := auth.HashPassword(*upd.NewPassword, s.bcrypt)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil && strings.TrimSpace(*upd.Email) != "" {
		normalized := strings.ToLower(strings.TrimSpace(*upd.Email))
		if normalized != user.Email {
			if existing, err := s.users.GetByEmail(ctx, normalized); err == nil && existing != nil {
				return nil, apperrors.NewConflict("A user with this email already exists", nil)
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			user.Email = normalized
		}
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Me reloads the authenticated user's record.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AuthService) issueSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
