package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/export"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type ListContactsInput struct {
	WabaID string `query:"wabaId" required:"true" doc:"WhatsApp Business Account ID"`
	Search string `query:"search" doc:"Match on name, phone or email"`
}

type ListContactsOutput struct {
	Body struct {
		Success  bool              `json:"success"`
		Contacts []*domain.Contact `json:"contacts"`
	}
}

type ExportContactsInput struct {
	WabaID string `query:"wabaId" doc:"WhatsApp Business Account ID"`
}

type ExportContactsOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type FilterContactsInput struct {
	Body struct {
		WabaID  string          `json:"wabaId" minLength:"1" doc:"WhatsApp Business Account ID"`
		Filters []domain.Filter `json:"filters" doc:"Conjunctive audience filter list"`
	}
}

type FilterContactsOutput struct {
	Body struct {
		Success  bool              `json:"success"`
		Contacts []*domain.Contact `json:"contacts"`
	}
}

// RegisterContactRoutes mounts contact listing, audience filtering and CSV
// export.
func RegisterContactRoutes(api huma.API, store DataStore, m *metrics.APIMetrics) {
	huma.Register(api, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts",
		Summary:     "List contacts for a WABA",
		Tags:        []string{"Contacts"},
	}, func(ctx context.Context, input *ListContactsInput) (*ListContactsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		contacts, err := store.Contacts().List(ctx, userID, input.WabaID, input.Search)
		if err != nil {
			return nil, errInternal("failed to list contacts")
		}

		out := &ListContactsOutput{}
		out.Body.Success = true
		out.Body.Contacts = contacts
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts/export",
		Summary:     "Export active contacts as CSV",
		Tags:        []string{"Contacts"},
	}, func(ctx context.Context, input *ExportContactsInput) (*ExportContactsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		// wabaId is validated by hand so the missing-parameter case maps to
		// the contract's 400 rather than a generic validation failure.
		if input.WabaID == "" {
			return nil, errBadRequest("wabaId is required")
		}

		contacts, err := store.Contacts().ListActive(ctx, userID, input.WabaID)
		if err != nil {
			return nil, errInternal("failed to load contacts")
		}

		// An empty export is an error by design, not a valid empty file.
		if len(contacts) == 0 {
			return nil, errNotFound("no contacts found for this WABA")
		}

		csv, err := export.ContactsCSV(contacts)
		if err != nil {
			return nil, errInternal("failed to serialize contacts")
		}

		if m != nil {
			m.ExportsTotal.Inc()
		}

		return &ExportContactsOutput{
			ContentType:        "text/csv",
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())),
			Body:               csv,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "filter-contacts",
		Method:      http.MethodPost,
		Path:        "/contacts/filter",
		Summary:     "Resolve an audience filter to a contact set",
		Tags:        []string{"Contacts"},
	}, func(ctx context.Context, input *FilterContactsInput) (*FilterContactsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		if err := domain.ValidateFilters(input.Body.Filters); err != nil {
			return nil, errBadRequest(err.Error())
		}

		contacts, err := store.Contacts().Resolve(ctx, userID, input.Body.WabaID, input.Body.Filters)
		if err != nil {
			return nil, errInternal("failed to resolve filters")
		}

		out := &FilterContactsOutput{}
		out.Body.Success = true
		out.Body.Contacts = contacts
		return out, nil
	})
}
