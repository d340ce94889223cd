package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/server/middleware"
	"github.com/sendloop/sendloop/internal/template"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

type SubmitTemplateInput struct {
	Body struct {
		WabaID   string `json:"wabaId" minLength:"1" doc:"WhatsApp Business Account ID"`
		Name     string `json:"name" minLength:"1" maxLength:"512" doc:"Lowercase snake_case template name"`
		Category string `json:"category" enum:"MARKETING,UTILITY,AUTHENTICATION"`
		Language string `json:"language" minLength:"1" doc:"BCP-47 language tag, e.g. en_US"`
		Channel  string `json:"channel" minLength:"1" doc:"Delivery channel, e.g. whatsapp"`

		HeaderFormat string `json:"headerFormat,omitempty" enum:",TEXT,IMAGE,VIDEO,DOCUMENT"`
		HeaderText   string `json:"headerText,omitempty" maxLength:"60"`
		HeaderHandle string `json:"headerHandle,omitempty" doc:"Media handle from the upload endpoint"`
		BodyText     string `json:"body,omitempty" maxLength:"1024"`
		Footer       string `json:"footer,omitempty" maxLength:"60"`

		Buttons   []template.Button `json:"buttons,omitempty" maxItems:"10"`
		Variables []string          `json:"variables,omitempty" doc:"Sample values, one per {{n}} placeholder"`

		Auth *template.AuthSettings `json:"authSettings,omitempty" doc:"Required for AUTHENTICATION templates"`
	}
}

type SubmitTemplateOutput struct {
	Body struct {
		Success  bool                       `json:"success"`
		Template *whatsapp.SubmissionResult `json:"template"`
	}
}

// RegisterTemplateRoutes mounts template submission. The draft is walked
// through the full composition flow server-side, so step guards apply even
// when the client sends everything in one request.
func RegisterTemplateRoutes(api huma.API, store DataStore, gateway TemplateGateway, vault TokenVault, m *metrics.APIMetrics) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-template",
		Method:      http.MethodPost,
		Path:        "/templates",
		Summary:     "Compose and submit a message template for approval",
		Tags:        []string{"Templates"},
	}, func(ctx context.Context, input *SubmitTemplateInput) (*SubmitTemplateOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		account, err := store.Wabas().GetByID(ctx, companyID, input.Body.WabaID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("WABA account not found")
		}
		if err != nil {
			return nil, errInternal("failed to load WABA account")
		}

		draft := template.NewDraft()
		draft.Name = input.Body.Name
		draft.Category = input.Body.Category
		draft.Language = input.Body.Language
		draft.Channel = input.Body.Channel
		draft.HeaderFormat = input.Body.HeaderFormat
		draft.HeaderText = input.Body.HeaderText
		draft.HeaderHandle = input.Body.HeaderHandle
		draft.Body = input.Body.BodyText
		draft.Footer = input.Body.Footer
		draft.Buttons = input.Body.Buttons
		draft.Variables = input.Body.Variables
		draft.Auth = input.Body.Auth

		payload, err := draft.Compose()
		if err != nil {
			if m != nil {
				m.TemplatesTotal.WithLabelValues("invalid").Inc()
			}
			return nil, errBadRequest(err.Error())
		}

		token, err := vault.Decrypt(account.AccessToken)
		if err != nil {
			log.Error().Err(err).Str("waba_id", account.WabaID).Msg("waba token decrypt failed")
			return nil, errInternal("failed to access channel credentials")
		}

		result, err := gateway.SubmitTemplate(ctx, account.WabaID, token, payload)
		if errors.Is(err, whatsapp.ErrUpstream) {
			if m != nil {
				m.TemplatesTotal.WithLabelValues("rejected").Inc()
			}
			return nil, apiError(http.StatusBadGateway, "template submission was rejected upstream")
		}
		if err != nil {
			return nil, errInternal("failed to submit template")
		}

		if m != nil {
			m.TemplatesTotal.WithLabelValues("accepted").Inc()
		}

		out := &SubmitTemplateOutput{}
		out.Body.Success = true
		out.Body.Template = result
		return out, nil
	})
}
