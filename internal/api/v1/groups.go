package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type ListGroupsInput struct {
	WabaID string `query:"wabaId" required:"true" doc:"WhatsApp Business Account ID"`
	Search string `query:"search" doc:"Match on name or description"`
}

type ListGroupsOutput struct {
	Body struct {
		Success bool                   `json:"success"`
		Groups  []*domain.ContactGroup `json:"groups"`
	}
}

type CreateGroupInput struct {
	Body struct {
		WabaID      string      `json:"wabaId" minLength:"1" doc:"WhatsApp Business Account ID"`
		Name        string      `json:"name" minLength:"1" maxLength:"255" doc:"Group name"`
		Description string      `json:"description,omitempty" maxLength:"1024"`
		Color       string      `json:"color,omitempty" doc:"One of the fixed palette colors"`
		ContactIDs  []uuid.UUID `json:"contactIds,omitempty" doc:"Member contact IDs; empty is a valid broadcast list"`
	}
}

type GroupOutput struct {
	Body struct {
		Success bool                 `json:"success"`
		Group   *domain.ContactGroup `json:"group"`
	}
}

type GetGroupInput struct {
	ID              uuid.UUID `path:"id"`
	IncludeContacts bool      `query:"includeContacts" doc:"Expand member IDs to full contact records"`
}

type GetGroupOutput struct {
	Body struct {
		Success  bool                 `json:"success"`
		Group    *domain.ContactGroup `json:"group"`
		Contacts []*domain.Contact    `json:"contacts,omitempty"`
	}
}

type UpdateGroupInput struct {
	ID   uuid.UUID `path:"id"`
	Body struct {
		Name        string      `json:"name" minLength:"1" maxLength:"255"`
		Description string      `json:"description,omitempty" maxLength:"1024"`
		Color       string      `json:"color,omitempty"`
		ContactIDs  []uuid.UUID `json:"contactIds"`
	}
}

type DeleteGroupInput struct {
	ID uuid.UUID `path:"id"`
}

type SuccessOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// RegisterGroupRoutes mounts contact group CRUD.
func RegisterGroupRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-contact-groups",
		Method:      http.MethodGet,
		Path:        "/contact-groups",
		Summary:     "List contact groups",
		Tags:        []string{"Contact Groups"},
	}, func(ctx context.Context, input *ListGroupsInput) (*ListGroupsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		groups, err := store.Groups().List(ctx, userID, input.WabaID, input.Search)
		if err != nil {
			return nil, errInternal("failed to list contact groups")
		}

		out := &ListGroupsOutput{}
		out.Body.Success = true
		out.Body.Groups = groups
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-contact-group",
		Method:      http.MethodPost,
		Path:        "/contact-groups",
		Summary:     "Create a contact group",
		Tags:        []string{"Contact Groups"},
	}, func(ctx context.Context, input *CreateGroupInput) (*GroupOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		color := input.Body.Color
		if color == "" {
			color = domain.GroupColors[0]
		}
		if !domain.ValidGroupColor(color) {
			return nil, errBadRequest("color is not in the palette")
		}

		now := time.Now()
		g := &domain.ContactGroup{
			ID:           uuid.New(),
			OwnerID:      userID,
			WabaID:       input.Body.WabaID,
			Name:         input.Body.Name,
			Description:  input.Body.Description,
			Color:        color,
			ContactIDs:   input.Body.ContactIDs,
			ContactCount: len(input.Body.ContactIDs),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := store.Groups().Create(ctx, g); err != nil {
			return nil, errInternal("failed to create contact group")
		}

		out := &GroupOutput{}
		out.Body.Success = true
		out.Body.Group = g
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contact-group",
		Method:      http.MethodGet,
		Path:        "/contact-groups/{id}",
		Summary:     "Get a contact group, optionally with member records",
		Tags:        []string{"Contact Groups"},
	}, func(ctx context.Context, input *GetGroupInput) (*GetGroupOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		g, err := store.Groups().GetByID(ctx, userID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("contact group not found")
		}
		if err != nil {
			return nil, errInternal("failed to load contact group")
		}

		out := &GetGroupOutput{}
		out.Body.Success = true
		out.Body.Group = g

		if input.IncludeContacts {
			contacts, err := store.Contacts().ListByIDs(ctx, userID, g.ContactIDs)
			if err != nil {
				return nil, errInternal("failed to expand group members")
			}
			out.Body.Contacts = contacts
		}

		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-contact-group",
		Method:      http.MethodPut,
		Path:        "/contact-groups/{id}",
		Summary:     "Replace a contact group's fields and membership",
		Tags:        []string{"Contact Groups"},
	}, func(ctx context.Context, input *UpdateGroupInput) (*GroupOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		g, err := store.Groups().GetByID(ctx, userID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("contact group not found")
		}
		if err != nil {
			return nil, errInternal("failed to load contact group")
		}

		if input.Body.Color != "" {
			if !domain.ValidGroupColor(input.Body.Color) {
				return nil, errBadRequest("color is not in the palette")
			}
			g.Color = input.Body.Color
		}

		g.Name = input.Body.Name
		g.Description = input.Body.Description
		g.ContactIDs = input.Body.ContactIDs
		g.ContactCount = len(g.ContactIDs)

		if err := store.Groups().Update(ctx, g); err != nil {
			return nil, errInternal("failed to update contact group")
		}

		out := &GroupOutput{}
		out.Body.Success = true
		out.Body.Group = g
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-contact-group",
		Method:      http.MethodDelete,
		Path:        "/contact-groups/{id}",
		Summary:     "Delete a contact group (members are never deleted)",
		Tags:        []string{"Contact Groups"},
	}, func(ctx context.Context, input *DeleteGroupInput) (*SuccessOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		err := store.Groups().Delete(ctx, userID, input.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("contact group not found")
		}
		if err != nil {
			return nil, errInternal("failed to delete contact group")
		}

		out := &SuccessOutput{}
		out.Body.Success = true
		return out, nil
	})
}
