package dto

import (
	"time"

	"github.com/tashkhees/support-portal/internal/domain"
)

// GenerateLicensesRequest asks for a batch of codes.
type GenerateLicensesRequest struct {
	Count     int        `json:"count" validate:"omitempty,min=1,max=50"`
	Product   string     `json:"product,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Notes     string     `json:"notes,omitempty" validate:"max=500"`
}

// ValidateLicenseRequest is the public pre-registration check.
type ValidateLicenseRequest struct {
	LicenseKey string `json:"licenseKey" validate:"required"`
}

// ValidateLicenseResponse reports redeemability.
type ValidateLicenseResponse struct {
	Valid   bool           `json:"valid"`
	Reason  string         `json:"reason,omitempty"`
	Product domain.Product `json:"product,omitempty"`
}

// LicenseResponse is the key resource.
type LicenseResponse struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Product   domain.Product `json:"product"`
	IsUsed    bool           `json:"isUsed"`
	UsedBy    *string        `json:"usedBy,omitempty"`
	UsedAt    *time.Time     `json:"usedAt,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LicenseStatsResponse covers the whole registry.
type LicenseStatsResponse struct {
	Total     int64 `json:"total"`
	Used      int64 `json:"used"`
	Available int64 `json:"available"`
}

// LicenseListResponse is the admin registry view.
type LicenseListResponse struct {
	Licenses []LicenseResponse    `json:"licenses"`
	Stats    LicenseStatsResponse `json:"stats"`
}
