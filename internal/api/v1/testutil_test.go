package v1_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
	"github.com/sendloop/sendloop/internal/template"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

// ---------------------------------------------------------------------------
// Context helpers for DoCtx requests
// ---------------------------------------------------------------------------

func companyCtx(companyID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyCompanyID, companyID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleOwner)
	return ctx
}

func sessionCtx(companyID, userID uuid.UUID) context.Context {
	ctx := companyCtx(companyID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	return ctx
}

func roleCtx(companyID uuid.UUID, role string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyCompanyID, companyID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, role)
	return ctx
}

// ---------------------------------------------------------------------------
// Plain chi request helpers for the non-huma handlers
// ---------------------------------------------------------------------------

type chiRecorder = httptest.ResponseRecorder

func newChiRequest(t *testing.T, method, target, paramKey, paramVal, body string) (*http.Request, *chiRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(paramKey, paramVal)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return req, httptest.NewRecorder()
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users     domain.UserRepository
	companies domain.CompanyRepository
	contacts  domain.ContactRepository
	groups    domain.ContactGroupRepository
	workflows domain.WorkflowRepository
	roles     domain.RoleRepository
	wabas     domain.WabaAccountRepository
}

func (m *mockDataStore) Users() domain.UserRepository          { return m.users }
func (m *mockDataStore) Companies() domain.CompanyRepository   { return m.companies }
func (m *mockDataStore) Contacts() domain.ContactRepository    { return m.contacts }
func (m *mockDataStore) Groups() domain.ContactGroupRepository { return m.groups }
func (m *mockDataStore) Workflows() domain.WorkflowRepository  { return m.workflows }
func (m *mockDataStore) Roles() domain.RoleRepository          { return m.roles }
func (m *mockDataStore) Wabas() domain.WabaAccountRepository   { return m.wabas }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc       func(ctx context.Context, u *domain.User) error
	getByIDFunc      func(ctx context.Context, companyID, id uuid.UUID) (*domain.User, error)
	getByEmailFunc   func(ctx context.Context, email string) (*domain.User, error)
	updateFunc       func(ctx context.Context, u *domain.User) error
	listFunc         func(ctx context.Context, companyID uuid.UUID) ([]*domain.User, error)
	countFunc        func(ctx context.Context, companyID uuid.UUID) (int, error)
	deleteFunc       func(ctx context.Context, companyID, id uuid.UUID) error
	setLastLoginFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, companyID, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

func (m *mockUserRepo) List(ctx context.Context, companyID uuid.UUID) ([]*domain.User, error) {
	return m.listFunc(ctx, companyID)
}

func (m *mockUserRepo) Count(ctx context.Context, companyID uuid.UUID) (int, error) {
	return m.countFunc(ctx, companyID)
}

func (m *mockUserRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.deleteFunc(ctx, companyID, id)
}

func (m *mockUserRepo) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.setLastLoginFunc(ctx, id, at)
}

// ---------------------------------------------------------------------------
// Mock CompanyRepository
// ---------------------------------------------------------------------------

type mockCompanyRepo struct {
	createFunc  func(ctx context.Context, c *domain.Company) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	updateFunc  func(ctx context.Context, c *domain.Company) error
}

func (m *mockCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	return m.createFunc(ctx, c)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	return m.updateFunc(ctx, c)
}

// ---------------------------------------------------------------------------
// Mock ContactRepository
// ---------------------------------------------------------------------------

type mockContactRepo struct {
	createFunc     func(ctx context.Context, c *domain.Contact) error
	getByIDFunc    func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error)
	listFunc       func(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*domain.Contact, error)
	listActiveFunc func(ctx context.Context, ownerID uuid.UUID, wabaID string) ([]*domain.Contact, error)
	listByIDsFunc  func(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Contact, error)
	resolveFunc    func(ctx context.Context, ownerID uuid.UUID, wabaID string, filters []domain.Filter) ([]*domain.Contact, error)
}

func (m *mockContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	return m.createFunc(ctx, c)
}

func (m *mockContactRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	return m.getByIDFunc(ctx, ownerID, id)
}

func (m *mockContactRepo) List(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*domain.Contact, error) {
	return m.listFunc(ctx, ownerID, wabaID, search)
}

func (m *mockContactRepo) ListActive(ctx context.Context, ownerID uuid.UUID, wabaID string) ([]*domain.Contact, error) {
	return m.listActiveFunc(ctx, ownerID, wabaID)
}

func (m *mockContactRepo) ListByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Contact, error) {
	return m.listByIDsFunc(ctx, ownerID, ids)
}

func (m *mockContactRepo) Resolve(ctx context.Context, ownerID uuid.UUID, wabaID string, filters []domain.Filter) ([]*domain.Contact, error) {
	return m.resolveFunc(ctx, ownerID, wabaID, filters)
}

// ---------------------------------------------------------------------------
// Mock ContactGroupRepository
// ---------------------------------------------------------------------------

type mockGroupRepo struct {
	createFunc  func(ctx context.Context, g *domain.ContactGroup) error
	getByIDFunc func(ctx context.Context, ownerID, id uuid.UUID) (*domain.ContactGroup, error)
	listFunc    func(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*domain.ContactGroup, error)
	updateFunc  func(ctx context.Context, g *domain.ContactGroup) error
	deleteFunc  func(ctx context.Context, ownerID, id uuid.UUID) error
}

func (m *mockGroupRepo) Create(ctx context.Context, g *domain.ContactGroup) error {
	return m.createFunc(ctx, g)
}

func (m *mockGroupRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.ContactGroup, error) {
	return m.getByIDFunc(ctx, ownerID, id)
}

func (m *mockGroupRepo) List(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*domain.ContactGroup, error) {
	return m.listFunc(ctx, ownerID, wabaID, search)
}

func (m *mockGroupRepo) Update(ctx context.Context, g *domain.ContactGroup) error {
	return m.updateFunc(ctx, g)
}

func (m *mockGroupRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.deleteFunc(ctx, ownerID, id)
}

// ---------------------------------------------------------------------------
// Mock WorkflowRepository
// ---------------------------------------------------------------------------

type mockWorkflowRepo struct {
	createFunc          func(ctx context.Context, w *domain.Workflow) error
	getByIDFunc         func(ctx context.Context, companyID, id uuid.UUID) (*domain.Workflow, error)
	listFunc            func(ctx context.Context, companyID uuid.UUID, wabaID string) ([]*domain.Workflow, error)
	countFunc           func(ctx context.Context, companyID uuid.UUID, wabaID string) (int, error)
	updateStructureFunc func(ctx context.Context, w *domain.Workflow) error
	setActiveFunc       func(ctx context.Context, companyID, id uuid.UUID, active bool) error
	deleteFunc          func(ctx context.Context, companyID, id uuid.UUID) error
	recordExecutionFunc func(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus, triggeredAt time.Time) error
}

func (m *mockWorkflowRepo) Create(ctx context.Context, w *domain.Workflow) error {
	return m.createFunc(ctx, w)
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Workflow, error) {
	return m.getByIDFunc(ctx, companyID, id)
}

func (m *mockWorkflowRepo) List(ctx context.Context, companyID uuid.UUID, wabaID string) ([]*domain.Workflow, error) {
	return m.listFunc(ctx, companyID, wabaID)
}

func (m *mockWorkflowRepo) Count(ctx context.Context, companyID uuid.UUID, wabaID string) (int, error) {
	return m.countFunc(ctx, companyID, wabaID)
}

func (m *mockWorkflowRepo) UpdateStructure(ctx context.Context, w *domain.Workflow) error {
	return m.updateStructureFunc(ctx, w)
}

func (m *mockWorkflowRepo) SetActive(ctx context.Context, companyID, id uuid.UUID, active bool) error {
	return m.setActiveFunc(ctx, companyID, id, active)
}

func (m *mockWorkflowRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.deleteFunc(ctx, companyID, id)
}

func (m *mockWorkflowRepo) RecordExecution(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus, triggeredAt time.Time) error {
	return m.recordExecutionFunc(ctx, id, status, triggeredAt)
}

// ---------------------------------------------------------------------------
// Mock RoleRepository
// ---------------------------------------------------------------------------

type mockRoleRepo struct {
	createFunc  func(ctx context.Context, r *domain.Role) error
	getByIDFunc func(ctx context.Context, companyID, id uuid.UUID) (*domain.Role, error)
	listFunc    func(ctx context.Context, companyID uuid.UUID) ([]*domain.Role, error)
}

func (m *mockRoleRepo) Create(ctx context.Context, r *domain.Role) error {
	return m.createFunc(ctx, r)
}

func (m *mockRoleRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Role, error) {
	return m.getByIDFunc(ctx, companyID, id)
}

func (m *mockRoleRepo) List(ctx context.Context, companyID uuid.UUID) ([]*domain.Role, error) {
	return m.listFunc(ctx, companyID)
}

// ---------------------------------------------------------------------------
// Mock WabaAccountRepository
// ---------------------------------------------------------------------------

type mockWabaRepo struct {
	createFunc  func(ctx context.Context, w *domain.WabaAccount) error
	getByIDFunc func(ctx context.Context, companyID uuid.UUID, wabaID string) (*domain.WabaAccount, error)
	listFunc    func(ctx context.Context, companyID uuid.UUID) ([]*domain.WabaAccount, error)
}

func (m *mockWabaRepo) Create(ctx context.Context, w *domain.WabaAccount) error {
	return m.createFunc(ctx, w)
}

func (m *mockWabaRepo) GetByID(ctx context.Context, companyID uuid.UUID, wabaID string) (*domain.WabaAccount, error) {
	return m.getByIDFunc(ctx, companyID, wabaID)
}

func (m *mockWabaRepo) List(ctx context.Context, companyID uuid.UUID) ([]*domain.WabaAccount, error) {
	return m.listFunc(ctx, companyID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	loginFunc          func(ctx context.Context, email, password string) (string, *domain.User, error)
	changePasswordFunc func(ctx context.Context, companyID, userID uuid.UUID, current, newPassword, confirm string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, companyID, userID uuid.UUID, current, newPassword, confirm string) error {
	return m.changePasswordFunc(ctx, companyID, userID, current, newPassword, confirm)
}

// ---------------------------------------------------------------------------
// Mock LimitService
// ---------------------------------------------------------------------------

type mockLimitService struct {
	workflowSnapshotFunc    func(ctx context.Context, companyID uuid.UUID, wabaID string) (billing.Snapshot, error)
	teamSnapshotFunc        func(ctx context.Context, companyID uuid.UUID) (billing.Snapshot, error)
	checkWorkflowCreateFunc func(ctx context.Context, companyID uuid.UUID, wabaID string) (billing.Snapshot, error)
	checkTeamCreateFunc     func(ctx context.Context, companyID uuid.UUID) (billing.Snapshot, error)
}

func (m *mockLimitService) WorkflowSnapshotCached(ctx context.Context, companyID uuid.UUID, wabaID string) (billing.Snapshot, error) {
	return m.workflowSnapshotFunc(ctx, companyID, wabaID)
}

func (m *mockLimitService) TeamSnapshotCached(ctx context.Context, companyID uuid.UUID) (billing.Snapshot, error) {
	return m.teamSnapshotFunc(ctx, companyID)
}

func (m *mockLimitService) CheckWorkflowCreate(ctx context.Context, companyID uuid.UUID, wabaID string) (billing.Snapshot, error) {
	return m.checkWorkflowCreateFunc(ctx, companyID, wabaID)
}

func (m *mockLimitService) CheckTeamCreate(ctx context.Context, companyID uuid.UUID) (billing.Snapshot, error) {
	return m.checkTeamCreateFunc(ctx, companyID)
}

// ---------------------------------------------------------------------------
// Mock TemplateGateway
// ---------------------------------------------------------------------------

type mockGateway struct {
	submitTemplateFunc func(ctx context.Context, wabaID, accessToken string, p *template.Payload) (*whatsapp.SubmissionResult, error)
	uploadMediaFunc    func(ctx context.Context, wabaID, accessToken, fileType string, file io.Reader) (*whatsapp.MediaHandle, error)
}

func (m *mockGateway) SubmitTemplate(ctx context.Context, wabaID, accessToken string, p *template.Payload) (*whatsapp.SubmissionResult, error) {
	return m.submitTemplateFunc(ctx, wabaID, accessToken, p)
}

func (m *mockGateway) UploadMedia(ctx context.Context, wabaID, accessToken, fileType string, file io.Reader) (*whatsapp.MediaHandle, error) {
	return m.uploadMediaFunc(ctx, wabaID, accessToken, fileType, file)
}

// ---------------------------------------------------------------------------
// Mock TokenVault
// ---------------------------------------------------------------------------

type mockVault struct {
	decryptFunc func(ciphertext string) (string, error)
}

func (m *mockVault) Decrypt(ciphertext string) (string, error) {
	return m.decryptFunc(ciphertext)
}
