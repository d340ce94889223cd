package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WabaAccount is one WhatsApp Business channel of a company. It is referenced
// by wabaId from contacts, groups, workflows and templates, never owned by
// them.
type WabaAccount struct {
	WabaID        string    `json:"wabaId"`
	CompanyID     uuid.UUID `json:"companyId"`
	PhoneNumberID string    `json:"phoneNumberId"`
	BusinessName  string    `json:"businessName"`
	PhoneNumber   string    `json:"phoneNumber"`
	Status        string    `json:"status"` // "connected", "pending", "disconnected"
	// AccessToken holds the Graph API credential, AES-GCM encrypted at rest.
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

type WabaAccountRepository interface {
	Create(ctx context.Context, w *WabaAccount) error
	GetByID(ctx context.Context, companyID uuid.UUID, wabaID string) (*WabaAccount, error)
	List(ctx context.Context, companyID uuid.UUID) ([]*WabaAccount, error)
}
