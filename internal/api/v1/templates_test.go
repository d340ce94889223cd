package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/sendloop/sendloop/internal/api/v1"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/template"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

func wabaStore(cid uuid.UUID) *mockDataStore {
	return &mockDataStore{
		wabas: &mockWabaRepo{
			getByIDFunc: func(_ context.Context, companyID uuid.UUID, wabaID string) (*domain.WabaAccount, error) {
				if companyID != cid || wabaID != "waba-1" {
					return nil, domain.ErrNotFound
				}
				return &domain.WabaAccount{WabaID: "waba-1", CompanyID: cid, AccessToken: "encrypted-token"}, nil
			},
		},
	}
}

func passthroughVault() *mockVault {
	return &mockVault{
		decryptFunc: func(ciphertext string) (string, error) {
			return "decrypted:" + ciphertext, nil
		},
	}
}

// ---------------------------------------------------------------------------
// POST /templates
// ---------------------------------------------------------------------------

func TestSubmitTemplate(t *testing.T) {
	t.Parallel()

	t.Run("marketing_full_payload", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		gateway := &mockGateway{
			submitTemplateFunc: func(_ context.Context, wabaID, accessToken string, p *template.Payload) (*whatsapp.SubmissionResult, error) {
				assert.Equal(t, "waba-1", wabaID)
				assert.Equal(t, "decrypted:encrypted-token", accessToken)
				assert.Equal(t, "order_update", p.Name)
				require.Len(t, p.Components, 4)
				assert.Equal(t, "HEADER", p.Components[0].Type)
				assert.Equal(t, "BODY", p.Components[1].Type)
				assert.Equal(t, "FOOTER", p.Components[2].Type)
				assert.Equal(t, "BUTTONS", p.Components[3].Type)
				return &whatsapp.SubmissionResult{ID: "tpl-1", Status: "PENDING", Category: "MARKETING"}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterTemplateRoutes(api, wabaStore(cid), gateway, passthroughVault(), nil)

		resp := api.PostCtx(companyCtx(cid), "/templates", map[string]any{
			"wabaId":       "waba-1",
			"name":         "order_update",
			"category":     "MARKETING",
			"language":     "en_US",
			"channel":      "whatsapp",
			"headerFormat": "TEXT",
			"headerText":   "Your order",
			"body":         "Hi {{1}}, your order {{2}} shipped.",
			"footer":       "Reply STOP to opt out",
			"buttons": []map[string]any{
				{"type": "QUICK_REPLY", "text": "Track"},
			},
			"variables": []string{"Alice", "A-1001"},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Success  bool                      `json:"success"`
			Template whatsapp.SubmissionResult `json:"template"`
		}
		err := json.Unmarshal(resp.Body.Bytes(), &body)
		require.NoError(t, err)
		assert.True(t, body.Success)
		assert.Equal(t, "tpl-1", body.Template.ID)
		assert.Equal(t, "PENDING", body.Template.Status)
	})

	t.Run("authentication_reduced_payload", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		gateway := &mockGateway{
			submitTemplateFunc: func(_ context.Context, _, _ string, p *template.Payload) (*whatsapp.SubmissionResult, error) {
				assert.Empty(t, p.Components, "AUTHENTICATION templates carry no components")
				require.NotNil(t, p.Auth)
				assert.Equal(t, "copy_code", p.Auth.OTPType)
				return &whatsapp.SubmissionResult{ID: "tpl-2", Status: "PENDING", Category: "AUTHENTICATION"}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterTemplateRoutes(api, wabaStore(cid), gateway, passthroughVault(), nil)

		resp := api.PostCtx(companyCtx(cid), "/templates", map[string]any{
			"wabaId":   "waba-1",
			"name":     "login_code",
			"category": "AUTHENTICATION",
			"language": "en_US",
			"channel":  "whatsapp",
			"authSettings": map[string]any{
				"otpType":               "copy_code",
				"codeExpirationMinutes": 10,
			},
		})

		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("invalid_name", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterTemplateRoutes(api, wabaStore(cid), &mockGateway{}, passthroughVault(), nil)

		resp := api.PostCtx(companyCtx(cid), "/templates", map[string]any{
			"wabaId":   "waba-1",
			"name":     "Order Update",
			"category": "MARKETING",
			"language": "en_US",
			"channel":  "whatsapp",
			"body":     "hello",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("empty_body_rejected", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterTemplateRoutes(api, wabaStore(cid), &mockGateway{}, passthroughVault(), nil)

		resp := api.PostCtx(companyCtx(cid), "/templates", map[string]any{
			"wabaId":   "waba-1",
			"name":     "empty_body",
			"category": "UTILITY",
			"language": "en_US",
			"channel":  "whatsapp",
			"body":     "   ",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("upstream_rejection_is_bad_gateway", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		gateway := &mockGateway{
			submitTemplateFunc: func(_ context.Context, _, _ string, _ *template.Payload) (*whatsapp.SubmissionResult, error) {
				return nil, fmt.Errorf("whatsapp.SubmitTemplate: %w", whatsapp.ErrUpstream)
			},
		}

		_, api := humatest.New(t)
		v1.RegisterTemplateRoutes(api, wabaStore(cid), gateway, passthroughVault(), nil)

		resp := api.PostCtx(companyCtx(cid), "/templates", map[string]any{
			"wabaId":   "waba-1",
			"name":     "rejected_upstream",
			"category": "UTILITY",
			"language": "en_US",
			"channel":  "whatsapp",
			"body":     "hello there",
		})

		assert.Equal(t, http.StatusBadGateway, resp.Code)
	})

	t.Run("unknown_waba", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterTemplateRoutes(api, wabaStore(cid), &mockGateway{}, passthroughVault(), nil)

		resp := api.PostCtx(companyCtx(cid), "/templates", map[string]any{
			"wabaId":   "waba-unknown",
			"name":     "no_channel",
			"category": "UTILITY",
			"language": "en_US",
			"channel":  "whatsapp",
			"body":     "hello",
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
