package domain

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Coarse role enum. Custom fine-grained roles are layered on top via RoleID.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	CompanyID    uuid.UUID  `json:"companyId"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // argon2id
	Role         string     `json:"role"` // "owner", "admin", or "agent"
	RoleID       *uuid.UUID `json:"roleId,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// RoleWeight maps the coarse role enum to its sort weight: owner=3, admin=2,
// everything else (agents, custom roles) = 1.
func RoleWeight(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	default:
		return 1
	}
}

// SortMembers orders a team list for display: role weight descending, then
// creation date descending within equal weight. The sort is stable.
func SortMembers(users []*User) {
	sort.SliceStable(users, func(i, j int) bool {
		wi, wj := RoleWeight(users[i].Role), RoleWeight(users[j].Role)
		if wi != wj {
			return wi > wj
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, companyID uuid.UUID) ([]*User, error)
	Count(ctx context.Context, companyID uuid.UUID) (int, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
