package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type ListRolesOutput struct {
	Body struct {
		Success bool           `json:"success"`
		Roles   []*domain.Role `json:"roles"`
	}
}

type CreateRoleInput struct {
	Body struct {
		Name        string              `json:"name" minLength:"1" maxLength:"255" doc:"Role name"`
		Description string              `json:"description,omitempty" maxLength:"1024"`
		Permissions []domain.Permission `json:"permissions,omitempty"`
		IsDefault   bool                `json:"isDefault,omitempty"`
	}
}

type RoleOutput struct {
	Body struct {
		Success bool         `json:"success"`
		Role    *domain.Role `json:"role"`
	}
}

// RegisterRoleRoutes mounts the fine-grained role endpoints. Roles carry
// permission sets for display; this service does not enforce them.
func RegisterRoleRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-roles",
		Method:      http.MethodGet,
		Path:        "/roles",
		Summary:     "List custom roles",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, _ *struct{}) (*ListRolesOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		roles, err := store.Roles().List(ctx, companyID)
		if err != nil {
			return nil, errInternal("failed to list roles")
		}

		out := &ListRolesOutput{}
		out.Body.Success = true
		out.Body.Roles = roles
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-role",
		Method:      http.MethodPost,
		Path:        "/roles",
		Summary:     "Create a custom role",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, input *CreateRoleInput) (*RoleOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		now := time.Now()
		r := &domain.Role{
			ID:          uuid.New(),
			CompanyID:   companyID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Permissions: input.Body.Permissions,
			IsDefault:   input.Body.IsDefault,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if r.Permissions == nil {
			r.Permissions = []domain.Permission{}
		}

		if err := store.Roles().Create(ctx, r); err != nil {
			return nil, errInternal("failed to create role")
		}

		out := &RoleOutput{}
		out.Body.Success = true
		out.Body.Role = r
		return out, nil
	})
}
