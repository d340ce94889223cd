package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type ListWorkflowsInput struct {
	WabaID string `query:"wabaId" required:"true" doc:"WhatsApp Business Account ID"`
}

type ListWorkflowsOutput struct {
	Body struct {
		Success   bool               `json:"success"`
		Workflows []*domain.Workflow `json:"workflows"`
	}
}

type CreateWorkflowInput struct {
	Body struct {
		WabaID      string `json:"wabaId" minLength:"1" doc:"WhatsApp Business Account ID"`
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Workflow name"`
		Description string `json:"description,omitempty" maxLength:"1024"`
	}
}

type WorkflowOutput struct {
	Body struct {
		Success  bool             `json:"success"`
		Workflow *domain.Workflow `json:"workflow"`
	}
}

type UpdateWorkflowInput struct {
	ID   uuid.UUID `path:"id"`
	Body struct {
		Name        string        `json:"name" minLength:"1" maxLength:"255"`
		Description string        `json:"description,omitempty" maxLength:"1024"`
		Nodes       []domain.Node `json:"nodes"`
		Edges       []domain.Edge `json:"edges"`
		Triggers    []string      `json:"triggers,omitempty"`
	}
}

type SetWorkflowActiveInput struct {
	ID   uuid.UUID `path:"id"`
	Body struct {
		IsActive bool `json:"isActive"`
	}
}

type DeleteWorkflowInput struct {
	ID uuid.UUID `path:"id"`
}

type WorkflowLimitInput struct {
	WabaID string `query:"wabaId" required:"true" doc:"WhatsApp Business Account ID"`
}

type LimitOutput struct {
	Body struct {
		Success bool `json:"success"`
		billing.Snapshot
	}
}

// RegisterWorkflowRoutes mounts workflow CRUD and the plan-limit endpoint.
// Creation is quota-gated; the two failure codes must stay distinct for the
// UI's remediation flows.
func RegisterWorkflowRoutes(api huma.API, store DataStore, limits LimitService, m *metrics.APIMetrics) {
	huma.Register(api, huma.Operation{
		OperationID: "list-workflows",
		Method:      http.MethodGet,
		Path:        "/workflows",
		Summary:     "List workflows for a WABA",
		Tags:        []string{"Workflows"},
	}, func(ctx context.Context, input *ListWorkflowsInput) (*ListWorkflowsOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		workflows, err := store.Workflows().List(ctx, companyID, input.WabaID)
		if err != nil {
			return nil, errInternal("failed to list workflows")
		}

		out := &ListWorkflowsOutput{}
		out.Body.Success = true
		out.Body.Workflows = workflows
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-workflow",
		Method:      http.MethodPost,
		Path:        "/workflows",
		Summary:     "Create a workflow (plan-gated)",
		Tags:        []string{"Workflows"},
	}, func(ctx context.Context, input *CreateWorkflowInput) (*WorkflowOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		snap, err := limits.CheckWorkflowCreate(ctx, companyID, input.Body.WabaID)
		switch {
		case errors.Is(err, billing.ErrLimitReached):
			if m != nil {
				m.QuotaRejections.WithLabelValues("limit_reached").Inc()
			}
			return nil, errQuota(CodeWorkflowLimitReached, "workflow limit reached for the current plan", snap)
		case errors.Is(err, billing.ErrSubscriptionInactive):
			if m != nil {
				m.QuotaRejections.WithLabelValues("subscription_inactive").Inc()
			}
			return nil, errQuota(CodeSubscriptionInactive, "subscription is not active", snap)
		case err != nil:
			return nil, errInternal("failed to check plan limits")
		}

		now := time.Now()
		w := &domain.Workflow{
			ID:          uuid.New(),
			CompanyID:   companyID,
			WabaID:      input.Body.WabaID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			IsActive:    false,
			Nodes:       []domain.Node{},
			Edges:       []domain.Edge{},
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Workflows().Create(ctx, w); err != nil {
			return nil, errInternal("failed to create workflow")
		}

		out := &WorkflowOutput{}
		out.Body.Success = true
		out.Body.Workflow = w
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-workflow",
		Method:      http.MethodPut,
		Path:        "/workflows/{id}",
		Summary:     "Replace a workflow's structure (bumps version)",
		Tags:        []string{"Workflows"},
	}, func(ctx context.Context, input *UpdateWorkflowInput) (*WorkflowOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		w, err := store.Workflows().GetByID(ctx, companyID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("workflow not found")
		}
		if err != nil {
			return nil, errInternal("failed to load workflow")
		}

		w.Name = input.Body.Name
		w.Description = input.Body.Description
		w.Nodes = input.Body.Nodes
		w.Edges = input.Body.Edges
		w.Triggers = input.Body.Triggers

		if err := store.Workflows().UpdateStructure(ctx, w); err != nil {
			return nil, errInternal("failed to update workflow")
		}
		w.Version++

		out := &WorkflowOutput{}
		out.Body.Success = true
		out.Body.Workflow = w
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-workflow-active",
		Method:      http.MethodPatch,
		Path:        "/workflows/{id}/status",
		Summary:     "Toggle a workflow's activation (no version bump)",
		Tags:        []string{"Workflows"},
	}, func(ctx context.Context, input *SetWorkflowActiveInput) (*SuccessOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		err := store.Workflows().SetActive(ctx, companyID, input.ID, input.Body.IsActive)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("workflow not found")
		}
		if err != nil {
			return nil, errInternal("failed to toggle workflow")
		}

		out := &SuccessOutput{}
		out.Body.Success = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-workflow",
		Method:      http.MethodDelete,
		Path:        "/workflows/{id}",
		Summary:     "Delete a workflow",
		Tags:        []string{"Workflows"},
	}, func(ctx context.Context, input *DeleteWorkflowInput) (*SuccessOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		err := store.Workflows().Delete(ctx, companyID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("workflow not found")
		}
		if err != nil {
			return nil, errInternal("failed to delete workflow")
		}

		out := &SuccessOutput{}
		out.Body.Success = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "workflow-limit",
		Method:      http.MethodGet,
		Path:        "/workflows/limit",
		Summary:     "Current workflow usage versus the plan limit",
		Tags:        []string{"Workflows"},
	}, func(ctx context.Context, input *WorkflowLimitInput) (*LimitOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		snap, err := limits.WorkflowSnapshotCached(ctx, companyID, input.WabaID)
		if err != nil {
			return nil, errInternal("failed to compute workflow limits")
		}

		out := &LimitOutput{}
		out.Body.Success = true
		out.Body.Snapshot = snap
		return out, nil
	})
}

type executionReport struct {
	Status      domain.ExecutionStatus `json:"status"`
	TriggeredAt time.Time              `json:"triggeredAt"`
}

// ExecutionReportHandler accepts run results from the external execution
// engine. Counters are mutated through this path only; nothing in this
// service runs workflows. Mounted behind the engine-key middleware, outside
// the session-cookie surface.
func ExecutionReportHandler(store DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid workflow id"}`))
			return
		}

		var report executionReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid report body"}`))
			return
		}

		if report.Status != domain.ExecutionSuccess && report.Status != domain.ExecutionFailure {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"status must be success or failure"}`))
			return
		}

		triggeredAt := report.TriggeredAt
		if triggeredAt.IsZero() {
			triggeredAt = time.Now()
		}

		err = store.Workflows().RecordExecution(r.Context(), id, report.Status, triggeredAt)
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"workflow not found"}`))
			return
		}
		if err != nil {
			log.Error().Err(err).Str("workflow_id", id.String()).Msg("execution report failed")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"error":"failed to record execution"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}
}
