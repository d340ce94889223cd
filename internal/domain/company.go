package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Subscription statuses as reported by the billing provider.
const (
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

type Company struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Address            string    `json:"address,omitempty"`
	Website            string    `json:"website,omitempty"`
	Industry           string    `json:"industry,omitempty"`
	Category           string    `json:"category,omitempty"`
	Location           string    `json:"location,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	CountryCode        string    `json:"countryCode,omitempty"`
	Size               string    `json:"size,omitempty"`
	LogoURL            string    `json:"logo,omitempty"`
	Plan               string    `json:"plan"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// industryCategories is the fixed industry -> category mapping. Categories are
// only meaningful within their industry; validation goes through
// CategoriesForIndustry rather than branching on industry names.
var industryCategories = map[string][]string{
	"ecommerce":   {"fashion", "electronics", "groceries", "home_goods", "beauty"},
	"education":   {"k12", "higher_education", "test_prep", "online_courses"},
	"finance":     {"banking", "insurance", "lending", "payments", "investments"},
	"healthcare":  {"clinics", "pharmacies", "diagnostics", "telemedicine"},
	"hospitality": {"hotels", "restaurants", "travel", "events"},
	"real_estate": {"residential", "commercial", "property_management"},
	"services":    {"consulting", "legal", "logistics", "repairs", "staffing"},
}

// CategoriesForIndustry returns the fixed category set for an industry.
// The second return is false for unknown industries.
func CategoriesForIndustry(industry string) ([]string, bool) {
	cats, ok := industryCategories[industry]
	return cats, ok
}

// ValidCategory reports whether category belongs to industry's fixed set.
// An empty category is always valid.
func ValidCategory(industry, category string) bool {
	if category == "" {
		return true
	}
	cats, ok := industryCategories[industry]
	if !ok {
		return false
	}
	return slices.Contains(cats, category)
}

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Update(ctx context.Context, c *Company) error
}
