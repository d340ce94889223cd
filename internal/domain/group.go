package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// GroupColors is the fixed palette for contact group tags.
var GroupColors = []string{"blue", "green", "purple", "orange", "pink", "teal", "red", "yellow"}

// ValidGroupColor reports whether color is in the fixed palette.
// An empty color falls back to the first palette entry at create time.
func ValidGroupColor(color string) bool {
	return slices.Contains(GroupColors, color)
}

// ContactGroup is a named broadcast list referencing contacts by ID.
// Deleting a group never deletes the contacts it references, and
// ContactCount is derived from the membership set at read time.
type ContactGroup struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"ownerId"`
	WabaID       string      `json:"wabaId"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Color        string      `json:"color"`
	ContactIDs   []uuid.UUID `json:"contactIds"`
	ContactCount int         `json:"contactCount"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type ContactGroupRepository interface {
	Create(ctx context.Context, g *ContactGroup) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*ContactGroup, error)
	List(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*ContactGroup, error)
	Update(ctx context.Context, g *ContactGroup) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
