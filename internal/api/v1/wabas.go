package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type ListWabasOutput struct {
	Body struct {
		Success  bool                  `json:"success"`
		Accounts []*domain.WabaAccount `json:"accounts"`
	}
}

type GetWabaInput struct {
	WabaID string `path:"wabaId"`
}

type WabaOutput struct {
	Body struct {
		Success bool                `json:"success"`
		Account *domain.WabaAccount `json:"account"`
	}
}

// RegisterWabaRoutes mounts the read-only WABA channel endpoints. Channel
// onboarding runs through Meta's embedded signup, outside this API.
func RegisterWabaRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-waba-accounts",
		Method:      http.MethodGet,
		Path:        "/waba-accounts",
		Summary:     "List connected WhatsApp Business accounts",
		Tags:        []string{"WABA"},
	}, func(ctx context.Context, _ *struct{}) (*ListWabasOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		accounts, err := store.Wabas().List(ctx, companyID)
		if err != nil {
			return nil, errInternal("failed to list WABA accounts")
		}

		out := &ListWabasOutput{}
		out.Body.Success = true
		out.Body.Accounts = accounts
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-waba-account",
		Method:      http.MethodGet,
		Path:        "/waba-accounts/{wabaId}",
		Summary:     "Get one WhatsApp Business account",
		Tags:        []string{"WABA"},
	}, func(ctx context.Context, input *GetWabaInput) (*WabaOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		account, err := store.Wabas().GetByID(ctx, companyID, input.WabaID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("WABA account not found")
		}
		if err != nil {
			return nil, errInternal("failed to load WABA account")
		}

		out := &WabaOutput{}
		out.Body.Success = true
		out.Body.Account = account
		return out, nil
	})
}
