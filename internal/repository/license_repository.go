package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tashkhees/support-portal/internal/domain"
)

// LicenseFilter narrows license listings.
type LicenseFilter struct {
	Used    *bool
	Product *domain.Product
}

// LicenseStats aggregates counts across the whole registry.
type LicenseStats struct {
	Total     int64
	Used      int64
	Available int64
}

// LicenseRepository encapsulates license key persistence.
type LicenseRepository interface {
	Create(ctx context.Context, key *domain.LicenseKey) error
	GetByID(ctx context.Context, id string) (*domain.LicenseKey, error)
	GetByCode(ctx context.Context, code string) (*domain.LicenseKey, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter LicenseFilter) ([]domain.LicenseKey, error)
	MarkUsed(ctx context.Context, id, userID string, usedAt time.Time) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (LicenseStats, error)
}

type licenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository instantiates repository.
func NewLicenseRepository(pool *pgxpool.Pool) LicenseRepository {
	return &licenseRepository{pool: pool}
}

const licenseColumns = `id, code, product, is_used, used_by, used_at, expires_at, created_by, notes, created_at`

func (r *licenseRepository) Create(ctx context.Context, key *domain.LicenseKey) error {
	const query = `
        INSERT INTO license_keys (code, product, expires_at, created_by, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		key.Code,
		key.Product,
		key.ExpiresAt,
		key.CreatedBy,
		key.Notes,
	).Scan(&key.ID, &key.CreatedAt)
}

func (r *licenseRepository) GetByID(ctx context.Context, id string) (*domain.LicenseKey, error) {
	query := `SELECT ` + licenseColumns + ` FROM license_keys WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *licenseRepository) GetByCode(ctx context.Context, code string) (*domain.LicenseKey, error) {
	query := `SELECT ` + licenseColumns + ` FROM license_keys WHERE code=UPPER($1)`
	return r.fetchSingle(ctx, query, code)
}

func (r *licenseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM license_keys WHERE code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *licenseRepository) List(ctx context.Context, filter LicenseFilter) ([]domain.LicenseKey, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Used != nil {
		args = append(args, *filter.Used)
		clauses = append(clauses, fmt.Sprintf("is_used=$%d", len(args)))
	}
	if filter.Product != nil {
		args = append(args, *filter.Product)
		clauses = append(clauses, fmt.Sprintf("product=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM license_keys WHERE %s ORDER BY created_at DESC`,
		licenseColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LicenseKey
	for rows.Next() {
		var key domain.LicenseKey
		if err := scanLicense(rows, &key); err != nil {
			return nil, err
		}
		result = append(result, key)
	}
	return result, rows.Err()
}

// MarkUsed flips the single-use flag. The is_used guard makes a second
// redemption of the same key report no rows instead of overwriting usage.
func (r *licenseRepository) MarkUsed(ctx context.Context, id, userID string, usedAt time.Time) error {
	const query = `
        UPDATE license_keys SET is_used=TRUE, used_by=$1, used_at=$2
        WHERE id=$3 AND is_used=FALSE`
	cmd, err := r.pool.Exec(ctx, query, userID, usedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *licenseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM license_keys WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *licenseRepository) Stats(ctx context.Context) (LicenseStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_used),
               COUNT(*) FILTER (WHERE NOT is_used)
        FROM license_keys`
	var stats LicenseStats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.Used, &stats.Available)
	return stats, err
}

func (r *licenseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.LicenseKey, error) {
	var key domain.LicenseKey
	if err := scanLicense(r.pool.QueryRow(ctx, query, arg), &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func scanLicense(row pgx.Row, key *domain.LicenseKey) error {
	return row.Scan(
		&key.ID,
		&key.Code,
		&key.Product,
		&key.IsUsed,
		&key.UsedBy,
		&key.UsedAt,
		&key.ExpiresAt,
		&key.CreatedBy,
		&key.Notes,
		&key.CreatedAt,
	)
}
