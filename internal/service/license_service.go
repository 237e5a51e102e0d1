package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/repository"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// MaxBatchSize caps license generation per call.
const MaxBatchSize = 50

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LicenseService manages the single-use registration code registry.
type LicenseService struct {
	licenses repository.LicenseRepository
	logger   *zap.Logger
}

// NewLicenseService builds the service.
func NewLicenseService(licenses repository.LicenseRepository, logger *zap.Logger) *LicenseService {
	return &LicenseService{licenses: licenses, logger: logger}
}

// GenerateCode draws a random TSK-XXXX-XXXX-XXXX code. Uniqueness is not
// guaranteed; callers retry against the persisted set on collision.
func GenerateCode() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; the retry
		// loop upstream still guards uniqueness.
		for i := range buf {
			buf[i] = byte(time.Now().UnixNano() >> (i * 5))
		}
	}
	segments := make([]string, 3)
	for i := 0; i < 3; i++ {
		var segment strings.Builder
		for j := 0; j < 4; j++ {
			segment.WriteByte(codeCharset[int(buf[i*4+j])%len(codeCharset)])
		}
		segments[i] = segment.String()
	}
	return "TSK-" + strings.Join(segments, "-")
}

// ValidationResult reports redeemability for a dry-run check.
type ValidationResult struct {
	Valid   bool
	Reason  string
	Product domain.Product
}

// Generate creates up to MaxBatchSize codes, redrawing on collision.
// Generation is best-effort: codes persisted before a failure remain, and
// whatever succeeded is returned.
func (s *LicenseService) Generate(ctx context.Context, adminID string, count int, product domain.Product, expiresAt *time.Time, notes string) ([]domain.LicenseKey, error) {
	if count < 1 {
		count = 1
	}
	if count > MaxBatchSize {
		count = MaxBatchSize
	}
	if product == "" {
		product = domain.ProductAll
	}
	if !domain.ValidLicenseProduct(product) {
		return nil, apperrors.NewValidationError("invalid product", map[string]any{"product": product})
	}

	generated := make([]domain.LicenseKey, 0, count)
	for i := 0; i < count; i++ {
		code, err := s.drawUniqueCode(ctx)
		if err != nil {
			s.logger.Warn("license batch aborted", zap.Int("generated", len(generated)), zap.Error(err))
			break
		}
		key := domain.LicenseKey{
			Code:      code,
			Product:   product,
			ExpiresAt: expiresAt,
			CreatedBy: &adminID,
			Notes:     notes,
		}
		if err := s.licenses.Create(ctx, &key); err != nil {
			s.logger.Warn("license batch aborted", zap.Int("generated", len(generated)), zap.Error(err))
			break
		}
		generated = append(generated, key)
	}
	if len(generated) == 0 {
		return nil, apperrors.NewInternalError(errors.New("could not generate any license keys"))
	}
	return generated, nil
}

// List returns filtered keys plus registry-wide stats. Stats always cover
// the full set, filters notwithstanding.
func (s *LicenseService) List(ctx context.Context, filter repository.LicenseFilter) ([]domain.LicenseKey, repository.LicenseStats, error) {
	keys, err := s.licenses.List(ctx, filter)
	if err != nil {
		return nil, repository.LicenseStats{}, apperrors.MapError(err)
	}
	stats, err := s.licenses.Stats(ctx)
	if err != nil {
		return nil, repository.LicenseStats{}, apperrors.MapError(err)
	}
	return keys, stats, nil
}

// Validate is the public pre-registration dry-run. Lookup is
// case-insensitive. An unknown code surfaces as NotFound so the handler
// can return 404 with valid=false.
func (s *LicenseService) Validate(ctx context.Context, code string) (ValidationResult, error) {
	key, err := s.licenses.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ValidationResult{}, apperrors.NewNotFound("License key", nil)
		}
		return ValidationResult{}, apperrors.MapError(err)
	}
	valid, reason := key.Redeemable(time.Now())
	return ValidationResult{Valid: valid, Reason: reason, Product: key.Product}, nil
}

// Redeem marks a key used by the given user. It must be called at most
// once per key; the repository's is_used guard turns a second call into a
// conflict.
func (s *LicenseService) Redeem(ctx context.Context, keyID, userID string) error {
	if err := s.licenses.MarkUsed(ctx, keyID, userID, time.Now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewConflict(domain.LicenseReasonUsed, nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Delete removes an unused key. Used keys are permanent audit records.
func (s *LicenseService) Delete(ctx context.Context, id string) error {
	key, err := s.licenses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("License key", nil)
		}
		return apperrors.MapError(err)
	}
	if key.IsUsed {
		return apperrors.NewValidationError("Cannot delete a used license key", nil)
	}
	if err := s.licenses.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *LicenseService) byCode(ctx context.Context, code string) (*domain.LicenseKey, error) {
	return s.licenses.GetByCode(ctx, strings.TrimSpace(code))
}

func (s *LicenseService) drawUniqueCode(ctx context.Context) (string, error) {
	for {
		code := GenerateCode()
		exists, err := s.licenses.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}
