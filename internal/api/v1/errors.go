package v1

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sendloop/sendloop/internal/billing"
)

// Error codes consumed by the UI to pick remediation actions. The two quota
// codes route to the billing page but must stay distinguishable.
const (
	CodeWorkflowLimitReached = "WORKFLOW_LIMIT_REACHED"
	CodeTeamLimitReached     = "TEAM_LIMIT_REACHED"
	CodeSubscriptionInactive = "SUBSCRIPTION_INACTIVE"
)

// ErrorModel is the failure envelope: {"success":false,"error":...}. The
// body's success flag, not the HTTP status, is the authoritative signal for
// API consumers. Quota failures carry code/limit/plan context.
type ErrorModel struct {
	Success bool   `json:"success"`
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
	Plan    string `json:"plan,omitempty"`

	status int
}

func (e *ErrorModel) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *ErrorModel) GetStatus() int { return e.status }

// ContentType implements huma.ContentTypeFilter so errors are served as
// plain application/json rather than problem+json.
func (e *ErrorModel) ContentType(string) string { return "application/json" }

// Route all framework-generated errors (validation failures, method errors)
// through the same envelope as handler errors.
func init() {
	huma.NewError = func(status int, message string, _ ...error) huma.StatusError {
		return &ErrorModel{Success: false, Message: message, status: status}
	}
}

func apiError(status int, message string) *ErrorModel {
	return &ErrorModel{Success: false, Message: message, status: status}
}

func errBadRequest(message string) *ErrorModel {
	return apiError(http.StatusBadRequest, message)
}

func errNotFound(message string) *ErrorModel {
	return apiError(http.StatusNotFound, message)
}

func errForbidden(message string) *ErrorModel {
	return apiError(http.StatusForbidden, message)
}

func errConflict(message string) *ErrorModel {
	return apiError(http.StatusConflict, message)
}

func errInternal(message string) *ErrorModel {
	return apiError(http.StatusInternalServerError, message)
}

func errUnauthenticated() *ErrorModel {
	return apiError(http.StatusUnauthorized, "missing or invalid session")
}

// errQuota builds the quota failure envelope for the given code with the
// snapshot's limit and plan attached.
func errQuota(code, message string, snap billing.Snapshot) *ErrorModel {
	limit := snap.Limit
	return &ErrorModel{
		Success: false,
		Message: message,
		Code:    code,
		Limit:   &limit,
		Plan:    snap.Plan,
		status:  http.StatusForbidden,
	}
}
