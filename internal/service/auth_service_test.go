package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/domain"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeLicenseRepo) {
	t.Helper()
	users := newFakeUserRepo()
	licenses := newFakeLicenseRepo()
	svc := NewAuthService(AuthServiceDeps{
		Users:      users,
		Licenses:   NewLicenseService(licenses, zap.NewNop()),
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: 4,
		Logger:     zap.NewNop(),
	})
	return svc, users, licenses
}

func seedLicense(t *testing.T, repo *fakeLicenseRepo, code string) *domain.LicenseKey {
	t.Helper()
	key := &domain.LicenseKey{Code: code, Product: domain.ProductMedscribe}
	require.NoError(t, repo.Create(context.Background(), key))
	return key
}

func TestRegisterHappyPath(t *testing.T) {
	svc, users, licenses := newAuthFixture(t)
	key := seedLicense(t, licenses, "TSK-AAAA-BBBB-CCCC")

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "Dana@Example.com",
		Password:   "hunter22",
		LicenseKey: "tsk-aaaa-bbbb-cccc",
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, domain.RoleUser, session.User.Role)
	assert.Equal(t, "dana@example.com", session.User.Email)
	require.NotNil(t, session.User.RegisteredProduct)
	assert.Equal(t, domain.ProductMedscribe, *session.User.RegisteredProduct)

	stored, err := licenses.GetByID(context.Background(), key.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsUsed)
	require.NotNil(t, stored.UsedBy)
	assert.Equal(t, session.User.ID, *stored.UsedBy)

	_, err = users.GetByEmail(context.Background(), "dana@example.com")
	assert.NoError(t, err)
}

func TestRegisterInvalidKey(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "dana@example.com",
		Password:   "hunter22",
		LicenseKey: "TSK-ZZZZ-ZZZZ-ZZZZ",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Invalid license key. Please check your key and try again.", domainErr.Message)
}

func TestRegisterUsedKey(t *testing.T) {
	svc, _, licenses := newAuthFixture(t)
	key := seedLicense(t, licenses, "TSK-AAAA-BBBB-CCCC")
	require.NoError(t, licenses.MarkUsed(context.Background(), key.ID, "someone", time.Now()))

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "dana@example.com",
		Password:   "hunter22",
		LicenseKey: key.Code,
	})
	require.Error(t, err)
	assert.Equal(t, "This license key has already been used", apperrors.ToDomainError(err).Message)
}

func TestRegisterExpiredKey(t *testing.T) {
	svc, _, licenses := newAuthFixture(t)
	past := time.Now().Add(-time.Minute)
	key := &domain.LicenseKey{Code: "TSK-AAAA-BBBB-CCCC", Product: domain.ProductAll, ExpiresAt: &past}
	require.NoError(t, licenses.Create(context.Background(), key))

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "dana@example.com",
		Password:   "hunter22",
		LicenseKey: key.Code,
	})
	require.Error(t, err)
	assert.Equal(t, "This license key has expired", apperrors.ToDomainError(err).Message)
}

func TestRegisterDuplicateEmailLeavesKeyUnused(t *testing.T) {
	svc, users, licenses := newAuthFixture(t)
	key := seedLicense(t, licenses, "TSK-AAAA-BBBB-CCCC")
	require.NoError(t, users.Create(context.Background(), &domain.User{
		Name: "Existing", Email: "dana@example.com", Role: domain.RoleUser,
	}))

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "DANA@example.com",
		Password:   "hunter22",
		LicenseKey: key.Code,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	stored, err := licenses.GetByID(context.Background(), key.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed)
}

func TestLogin(t *testing.T) {
	svc, _, licenses := newAuthFixture(t)
	seedLicense(t, licenses, "TSK-AAAA-BBBB-CCCC")
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "dana@example.com",
		Password:   "hunter22",
		LicenseKey: "TSK-AAAA-BBBB-CCCC",
	})
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "Dana@Example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(context.Background(), "dana@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperrors.ToDomainError(err).Message)

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperrors.ToDomainError(err).Message)
}

func TestCreateDeveloper(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	dev, err := svc.CreateDeveloper(context.Background(), "Sam", "sam@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, dev.Role)
	assert.Nil(t, dev.LicenseKey)

	_, err = svc.CreateDeveloper(context.Background(), "Sam Again", "SAM@example.com", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestDeleteDeveloperChecksRole(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	admin := &domain.User{Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), admin))

	err := svc.DeleteDeveloper(context.Background(), admin.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	err = svc.DeleteDeveloper(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	dev, err := svc.CreateDeveloper(context.Background(), "Sam", "sam@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDeveloper(context.Background(), dev.ID))
}

func TestUpdateProfilePicture(t *testing.T) {
	svc, _, licenses := newAuthFixture(t)
	seedLicense(t, licenses, "TSK-AAAA-BBBB-DDDD")
	session, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "dana@example.com",
		Password:   "hunter22",
		LicenseKey: "TSK-AAAA-BBBB-DDDD",
	})
	require.NoError(t, err)

	picture := "/uploads/avatar.png"
	user, err := svc.UpdateProfile(context.Background(), session.User.ID, ProfileUpdate{
		ProfilePicture: &picture,
	})
	require.NoError(t, err)
	assert.Equal(t, picture, user.ProfilePicture)

	reloaded, err := svc.Me(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, picture, reloaded.ProfilePicture)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	svc, _, licenses := newAuthFixture(t)
	seedLicense(t, licenses, "TSK-AAAA-BBBB-CCCC")
	session, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "dana@example.com",
		Password:   "hunter22",
		LicenseKey: "TSK-AAAA-BBBB-CCCC",
	})
	require.NoError(t, err)

	newPass := "hunter33"
	_, err = svc.UpdateProfile(context.Background(), session.User.ID, ProfileUpdate{
		CurrentPassword: "wrong",
		NewPassword:     &newPass,
	})
	require.Error(t, err)
	assert.Equal(t, "AUTHENTICATION", apperrors.ToDomainError(err).Code)

	_, err = svc.UpdateProfile(context.Background(), session.User.ID, ProfileUpdate{
		CurrentPassword: "hunter22",
		NewPassword:     &newPass,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "dana@example.com", "hunter33")
	assert.NoError(t, err)
}
