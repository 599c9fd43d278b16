package domain

import "time"

// User represents an account issued by the auth layer
type User struct {
	ID             string // UUID
	Email          string // Unique email address
	PasswordHash   string // Bcrypt hashed password (not returned in API)
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	IsActive       bool
}

// Role is the single role tag a user carries after onboarding
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleOrganization Role = "organization"
	RoleIntern       Role = "intern"
)

// Valid reports whether r is one of the three known role tags
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganization, RoleIntern:
		return true
	}
	return false
}

// RoleRecord binds a user to its role. At most one per user; write-once in
// normal flow, removed only by cascading account deletion.
type RoleRecord struct {
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(user *User) error
	Delete(id string) error
	List() ([]*User, error)
}

// RoleRepository defines data access for role records
type RoleRepository interface {
	Create(record *RoleRecord) error
	GetByUserID(userID string) (*RoleRecord, error)
}
