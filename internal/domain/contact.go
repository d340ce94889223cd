package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	WabaID        string     `json:"wabaId"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email,omitempty"`
	WhatsAppOptIn bool       `json:"whatsappOptIn"`
	Tags          []string   `json:"tags"`
	Notes         string     `json:"notes,omitempty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// NormalizeTags deduplicates the tag list in place, preserving first-seen
// order. Tags are a set; duplicates must never be stored.
func (c *Contact) NormalizeTags() {
	var out []string
	for _, t := range c.Tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	c.Tags = out
}

type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	GetByID(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) (*Contact, error)
	List(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*Contact, error)
	ListActive(ctx context.Context, ownerID uuid.UUID, wabaID string) ([]*Contact, error)
	ListByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*Contact, error)
	Resolve(ctx context.Context, ownerID uuid.UUID, wabaID string, filters []Filter) ([]*Contact, error)
}
