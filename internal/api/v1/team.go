package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/sendloop/sendloop/internal/auth"
	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type ListMembersOutput struct {
	Body struct {
		Success bool           `json:"success"`
		Members []*domain.User `json:"members"`
	}
}

type CreateMemberInput struct {
	Body struct {
		Name     string     `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Email    string     `json:"email" format:"email" doc:"Login email, unique platform-wide"`
		Password string     `json:"password" minLength:"6" doc:"Initial password"`
		Role     string     `json:"role" enum:"admin,agent" doc:"Coarse role; owner is never assignable"`
		RoleID   *uuid.UUID `json:"roleId,omitempty" doc:"Optional fine-grained role"`
	}
}

type MemberOutput struct {
	Body struct {
		Success bool         `json:"success"`
		Member  *domain.User `json:"member"`
	}
}

type UpdateMemberInput struct {
	ID   uuid.UUID `path:"id"`
	Body struct {
		Name     string     `json:"name" minLength:"1" maxLength:"255"`
		Email    string     `json:"email" format:"email"`
		Role     string     `json:"role" enum:"admin,agent"`
		RoleID   *uuid.UUID `json:"roleId,omitempty"`
		IsActive *bool      `json:"isActive,omitempty"`
	}
}

type DeleteMemberInput struct {
	ID uuid.UUID `path:"id"`
}

// RegisterTeamRoutes mounts team member CRUD and the seat-limit endpoint.
// The owner seat is immutable through this surface: it cannot be assigned,
// demoted or deleted.
func RegisterTeamRoutes(api huma.API, store DataStore, limits LimitService, m *metrics.APIMetrics) {
	huma.Register(api, huma.Operation{
		OperationID: "list-team-members",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List team members, owner first",
		Tags:        []string{"Team"},
	}, func(ctx context.Context, _ *struct{}) (*ListMembersOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		members, err := store.Users().List(ctx, companyID)
		if err != nil {
			return nil, errInternal("failed to list team members")
		}
		domain.SortMembers(members)

		out := &ListMembersOutput{}
		out.Body.Success = true
		out.Body.Members = members
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-team-member",
		Method:      http.MethodPost,
		Path:        "/users",
		Summary:     "Invite a team member (seat-gated)",
		Tags:        []string{"Team"},
	}, func(ctx context.Context, input *CreateMemberInput) (*MemberOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		snap, err := limits.CheckTeamCreate(ctx, companyID)
		switch {
		case errors.Is(err, billing.ErrLimitReached):
			if m != nil {
				m.QuotaRejections.WithLabelValues("limit_reached").Inc()
			}
			return nil, errQuota(CodeTeamLimitReached, "team member limit reached for the current plan", snap)
		case errors.Is(err, billing.ErrSubscriptionInactive):
			if m != nil {
				m.QuotaRejections.WithLabelValues("subscription_inactive").Inc()
			}
			return nil, errQuota(CodeSubscriptionInactive, "subscription is not active", snap)
		case err != nil:
			return nil, errInternal("failed to check plan limits")
		}

		hash, err := auth.HashPassword(input.Body.Password)
		if err != nil {
			return nil, errInternal("failed to hash password")
		}

		now := time.Now()
		u := &domain.User{
			ID:           uuid.New(),
			CompanyID:    companyID,
			Name:         input.Body.Name,
			Email:        input.Body.Email,
			PasswordHash: hash,
			Role:         input.Body.Role,
			RoleID:       input.Body.RoleID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = store.Users().Create(ctx, u)
		if errors.Is(err, domain.ErrConflict) {
			return nil, errConflict("a member with this email already exists")
		}
		if err != nil {
			return nil, errInternal("failed to create team member")
		}

		out := &MemberOutput{}
		out.Body.Success = true
		out.Body.Member = u
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-team-member",
		Method:      http.MethodPut,
		Path:        "/users/{id}",
		Summary:     "Update a team member's name, role or active flag",
		Tags:        []string{"Team"},
	}, func(ctx context.Context, input *UpdateMemberInput) (*MemberOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		u, err := store.Users().GetByID(ctx, companyID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("team member not found")
		}
		if err != nil {
			return nil, errInternal("failed to load team member")
		}

		if u.Role == domain.RoleOwner {
			return nil, errForbidden("the owner account cannot be modified here")
		}

		u.Name = input.Body.Name
		u.Email = input.Body.Email
		u.Role = input.Body.Role
		u.RoleID = input.Body.RoleID
		if input.Body.IsActive != nil {
			u.IsActive = *input.Body.IsActive
		}

		if err := store.Users().Update(ctx, u); err != nil {
			return nil, errInternal("failed to update team member")
		}

		out := &MemberOutput{}
		out.Body.Success = true
		out.Body.Member = u
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-team-member",
		Method:      http.MethodDelete,
		Path:        "/users/{id}",
		Summary:     "Remove a team member",
		Tags:        []string{"Team"},
	}, func(ctx context.Context, input *DeleteMemberInput) (*SuccessOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}
		userID, _ := middleware.UserIDFromContext(ctx)

		if input.ID == userID {
			return nil, errForbidden("you cannot remove your own account")
		}

		u, err := store.Users().GetByID(ctx, companyID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("team member not found")
		}
		if err != nil {
			return nil, errInternal("failed to load team member")
		}

		if u.Role == domain.RoleOwner {
			return nil, errForbidden("the owner account cannot be removed")
		}

		if err := store.Users().Delete(ctx, companyID, input.ID); err != nil {
			return nil, errInternal("failed to remove team member")
		}

		out := &SuccessOutput{}
		out.Body.Success = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team-limit",
		Method:      http.MethodGet,
		Path:        "/users/team-limit",
		Summary:     "Current seat usage versus the plan limit",
		Tags:        []string{"Team"},
	}, func(ctx context.Context, _ *struct{}) (*LimitOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		snap, err := limits.TeamSnapshotCached(ctx, companyID)
		if err != nil {
			return nil, errInternal("failed to compute team limits")
		}

		out := &LimitOutput{}
		out.Body.Success = true
		out.Body.Snapshot = snap
		return out, nil
	})
}
