package v1

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/template"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Companies() domain.CompanyRepository
	Contacts() domain.ContactRepository
	Groups() domain.ContactGroupRepository
	Workflows() domain.WorkflowRepository
	Roles() domain.RoleRepository
	Wabas() domain.WabaAccountRepository
}

// AuthService abstracts session and credential operations for handler
// testing. *auth.Service satisfies this interface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, companyID, userID uuid.UUID, current, newPassword, confirm string) error
}

// LimitService abstracts quota computation for handler testing.
// *billing.Service satisfies this interface.
type LimitService interface {
	WorkflowSnapshotCached(ctx context.Context, companyID uuid.UUID, wabaID string) (billing.Snapshot, error)
	TeamSnapshotCached(ctx context.Context, companyID uuid.UUID) (billing.Snapshot, error)
	CheckWorkflowCreate(ctx context.Context, companyID uuid.UUID, wabaID string) (billing.Snapshot, error)
	CheckTeamCreate(ctx context.Context, companyID uuid.UUID) (billing.Snapshot, error)
}

// TemplateGateway abstracts the Graph API client for handler testing.
// *whatsapp.Client satisfies this interface.
type TemplateGateway interface {
	SubmitTemplate(ctx context.Context, wabaID, accessToken string, p *template.Payload) (*whatsapp.SubmissionResult, error)
	UploadMedia(ctx context.Context, wabaID, accessToken, fileType string, file io.Reader) (*whatsapp.MediaHandle, error)
}

// TokenVault decrypts stored WABA access tokens.
// *secrets.Vault satisfies this interface.
type TokenVault interface {
	Decrypt(ciphertext string) (string, error)
}
