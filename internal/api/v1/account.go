package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sendloop/sendloop/internal/auth"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

type AccountOutput struct {
	Body struct {
		Success bool            `json:"success"`
		User    *domain.User    `json:"user"`
		Company *domain.Company `json:"company"`
	}
}

type UpdateProfileInput struct {
	Body struct {
		Name  string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Email string `json:"email" format:"email" doc:"Login email"`
	}
}

type ProfileOutput struct {
	Body struct {
		Success bool         `json:"success"`
		User    *domain.User `json:"user"`
	}
}

type UpdateCompanyInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255"`
		Address     string `json:"address,omitempty" maxLength:"1024"`
		Website     string `json:"website,omitempty" maxLength:"512"`
		Industry    string `json:"industry,omitempty" maxLength:"64"`
		Category    string `json:"category,omitempty" maxLength:"64"`
		Location    string `json:"location,omitempty" maxLength:"255"`
		Phone       string `json:"phone,omitempty" maxLength:"32"`
		CountryCode string `json:"countryCode,omitempty" maxLength:"8"`
		Size        string `json:"size,omitempty" maxLength:"32"`
		LogoURL     string `json:"logo,omitempty" maxLength:"512"`
	}
}

type CompanyOutput struct {
	Body struct {
		Success bool            `json:"success"`
		Company *domain.Company `json:"company"`
	}
}

type IndustryCategoriesInput struct {
	Industry string `query:"industry" required:"true" doc:"Industry key"`
}

type IndustryCategoriesOutput struct {
	Body struct {
		Success    bool     `json:"success"`
		Categories []string `json:"categories"`
	}
}

type ChangePasswordInput struct {
	Body struct {
		CurrentPassword string `json:"currentPassword" minLength:"1"`
		NewPassword     string `json:"newPassword" minLength:"1"`
		ConfirmPassword string `json:"confirmPassword" minLength:"1"`
	}
}

// RegisterAccountRoutes mounts the account and company settings endpoints.
// Plan and subscription status are read-only here; they change only through
// the billing provider.
func RegisterAccountRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/account",
		Summary:     "Current user and company settings",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, _ *struct{}) (*AccountOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		user, err := store.Users().GetByID(ctx, companyID, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("account not found")
		}
		if err != nil {
			return nil, errInternal("failed to load account")
		}

		company, err := store.Companies().GetByID(ctx, companyID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("company not found")
		}
		if err != nil {
			return nil, errInternal("failed to load company")
		}

		out := &AccountOutput{}
		out.Body.Success = true
		out.Body.User = user
		out.Body.Company = company
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/account/profile",
		Summary:     "Update the current user's profile",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		user, err := store.Users().GetByID(ctx, companyID, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("account not found")
		}
		if err != nil {
			return nil, errInternal("failed to load account")
		}

		user.Name = input.Body.Name
		user.Email = input.Body.Email
		err = store.Users().Update(ctx, user)
		if errors.Is(err, domain.ErrConflict) {
			return nil, errConflict("this email is already in use")
		}
		if err != nil {
			return nil, errInternal("failed to update profile")
		}

		out := &ProfileOutput{}
		out.Body.Success = true
		out.Body.User = user
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-company",
		Method:      http.MethodPut,
		Path:        "/account/company",
		Summary:     "Update company settings",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, input *UpdateCompanyInput) (*CompanyOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}
		if role, _ := middleware.RoleFromContext(ctx); role != domain.RoleOwner && role != domain.RoleAdmin {
			return nil, errForbidden("only owners and admins can change company settings")
		}

		company, err := store.Companies().GetByID(ctx, companyID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound("company not found")
		}
		if err != nil {
			return nil, errInternal("failed to load company")
		}

		category := input.Body.Category
		// Changing industry invalidates the previously stored category; it
		// is cleared rather than rejected. A newly supplied category must
		// still belong to the new industry.
		if input.Body.Industry != company.Industry && category == company.Category {
			category = ""
		}
		if !domain.ValidCategory(input.Body.Industry, category) {
			return nil, errBadRequest("category does not belong to this industry")
		}

		company.Name = input.Body.Name
		company.Address = input.Body.Address
		company.Website = input.Body.Website
		company.Industry = input.Body.Industry
		company.Category = category
		company.Location = input.Body.Location
		company.Phone = input.Body.Phone
		company.CountryCode = input.Body.CountryCode
		company.Size = input.Body.Size
		company.LogoURL = input.Body.LogoURL

		if err := store.Companies().Update(ctx, company); err != nil {
			return nil, errInternal("failed to update company")
		}

		out := &CompanyOutput{}
		out.Body.Success = true
		out.Body.Company = company
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "industry-categories",
		Method:      http.MethodGet,
		Path:        "/account/company/categories",
		Summary:     "Category options for an industry",
		Tags:        []string{"Account"},
	}, func(_ context.Context, input *IndustryCategoriesInput) (*IndustryCategoriesOutput, error) {
		cats, ok := domain.CategoriesForIndustry(input.Industry)
		if !ok {
			return nil, errNotFound("unknown industry")
		}

		out := &IndustryCategoriesOutput{}
		out.Body.Success = true
		out.Body.Categories = cats
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-password",
		Method:      http.MethodPost,
		Path:        "/account/change-password",
		Summary:     "Change the current user's password",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, input *ChangePasswordInput) (*SuccessOutput, error) {
		companyID, ok := middleware.CompanyIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated()
		}

		err := authSvc.ChangePassword(ctx, companyID, userID,
			input.Body.CurrentPassword, input.Body.NewPassword, input.Body.ConfirmPassword)
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch):
			return nil, errBadRequest("password confirmation does not match")
		case errors.Is(err, auth.ErrPasswordTooShort):
			return nil, errBadRequest("password must be at least 6 characters")
		case errors.Is(err, auth.ErrInvalidCredentials):
			return nil, apiError(http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, domain.ErrNotFound):
			return nil, errNotFound("account not found")
		case err != nil:
			return nil, errInternal("failed to change password")
		}

		out := &SuccessOutput{}
		out.Body.Success = true
		return out, nil
	})
}
