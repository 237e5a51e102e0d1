package domain

import "time"

// License key redeemability reasons, returned verbatim by validation.
const (
	LicenseReasonUsed    = "This license key has already been used"
	LicenseReasonExpired = "This license key has expired"
)

// LicenseKey is a single-use redemption code gating public registration.
// Once marked used its usage fields are immutable and the record becomes
// a permanent audit entry.
type LicenseKey struct {
	ID        string
	Code      string
	Product   Product
	IsUsed    bool
	UsedBy    *string
	UsedAt    *time.Time
	ExpiresAt *time.Time
	CreatedBy *string
	Notes     string
	CreatedAt time.Time
}

// Redeemable reports whether the key can still be redeemed, with the
// user-facing reason when it cannot.
func (k *LicenseKey) Redeemable(now time.Time) (bool, string) {
	if k.IsUsed {
		return false, LicenseReasonUsed
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false, LicenseReasonExpired
	}
	return true, ""
}
