package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Permission grants a set of actions on one resource, e.g.
// {Resource: "contacts", Actions: ["read", "export"]}. Permissions are
// display-only in this service; enforcement lives with the API consumers.
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

type Role struct {
	ID          uuid.UUID    `json:"id"`
	CompanyID   uuid.UUID    `json:"companyId"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions"`
	// IsDefault is stored and returned verbatim; no single-default
	// uniqueness is enforced per company.
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*Role, error)
	List(ctx context.Context, companyID uuid.UUID) ([]*Role, error)
}
