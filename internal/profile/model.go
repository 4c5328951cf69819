package profile

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Profile is the identity record consulted for authorization decisions.
// It is owned by the external identity provider; this service only reads it.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  *string
	Role      Role
	Suspended bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
