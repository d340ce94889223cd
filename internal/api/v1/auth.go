package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email"`
		Password string `json:"password" minLength:"1" doc:"Account password"`
	}
}

type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool         `json:"success"`
		User    *domain.User `json:"user"`
	}
}

type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

// RegisterAuthRoutes mounts the unauthenticated session endpoints.
func RegisterAuthRoutes(api huma.API, authSvc AuthService, sessionTTL time.Duration) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in and receive a session cookie",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		token, user, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, apiError(http.StatusUnauthorized, "invalid email or password")
		}

		out := &LoginOutput{
			SetCookie: http.Cookie{
				Name:     middleware.SessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(sessionTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			},
		}
		out.Body.Success = true
		out.Body.User = user
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Clear the session cookie",
		Tags:        []string{"Auth"},
	}, func(_ context.Context, _ *struct{}) (*LogoutOutput, error) {
		out := &LogoutOutput{
			SetCookie: http.Cookie{
				Name:     middleware.SessionCookie,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			},
		}
		out.Body.Success = true
		return out, nil
	})
}
