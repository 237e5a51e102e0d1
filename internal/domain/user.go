package domain

import "time"

// Role enumerates portal access levels.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
	RoleUser      Role = "USER"
)

// User is the domain model for every portal account: admins, developers
// and license-registered end-users.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	ProfilePicture    string
	LicenseKey        *string
	RegisteredProduct *Product
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
