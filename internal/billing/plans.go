package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/domain"
)

// Sentinel errors for quota gates. Handlers map these to the distinct
// WORKFLOW_LIMIT_REACHED / TEAM_LIMIT_REACHED / SUBSCRIPTION_INACTIVE codes.
var (
	ErrLimitReached         = errors.New("billing: plan limit reached")
	ErrSubscriptionInactive = errors.New("billing: subscription inactive")
)

// Unlimited marks a plan dimension with no cap.
const Unlimited = -1

// Plan is one entry of the static plan catalog.
type Plan struct {
	ID             string
	Name           string
	MaxWorkflows   int
	MaxTeamMembers int
}

var plans = map[string]Plan{
	"free":       {ID: "free", Name: "Free", MaxWorkflows: 2, MaxTeamMembers: 2},
	"starter":    {ID: "starter", Name: "Starter", MaxWorkflows: 10, MaxTeamMembers: 5},
	"growth":     {ID: "growth", Name: "Growth", MaxWorkflows: 50, MaxTeamMembers: 25},
	"enterprise": {ID: "enterprise", Name: "Enterprise", MaxWorkflows: Unlimited, MaxTeamMembers: Unlimited},
}

// PlanByID looks up a plan, falling back to free for unknown IDs.
func PlanByID(id string) Plan {
	if p, ok := plans[id]; ok {
		return p
	}
	return plans["free"]
}

// Snapshot is a computed, non-persisted view of current usage versus the plan
// limit. Limit and RemainingSlots are -1 when the dimension is unbounded.
type Snapshot struct {
	CurrentCount       int    `json:"currentCount"`
	Limit              int    `json:"limit"`
	CanCreateMore      bool   `json:"canCreateMore"`
	Plan               string `json:"plan"`
	PlanName           string `json:"planName"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	RemainingSlots     int    `json:"remainingSlots"`
}

func newSnapshot(p Plan, status string, current, limit int) Snapshot {
	underLimit := limit == Unlimited || current < limit

	remaining := Unlimited
	if limit != Unlimited {
		remaining = max(0, limit-current)
	}

	return Snapshot{
		CurrentCount:       current,
		Limit:              limit,
		CanCreateMore:      underLimit && status == domain.SubscriptionActive,
		Plan:               p.ID,
		PlanName:           p.Name,
		SubscriptionStatus: status,
		RemainingSlots:     remaining,
	}
}

// SnapshotCache is a read-through cache for limit snapshots. Implementations
// must treat misses as (zero, false, nil).
type SnapshotCache interface {
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Set(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error
}

// Service computes quota snapshots from live counts and the company's plan.
type Service struct {
	companies domain.CompanyRepository
	users     domain.UserRepository
	workflows domain.WorkflowRepository
	cache     SnapshotCache // may be nil
	cacheTTL  time.Duration
}

func NewService(companies domain.CompanyRepository, users domain.UserRepository, workflows domain.WorkflowRepository, cache SnapshotCache, cacheTTL time.Duration) *Service {
	return &Service{
		companies: companies,
		users:     users,
		workflows: workflows,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// WorkflowSnapshot computes a fresh workflow quota snapshot.
func (s *Service) WorkflowSnapshot(ctx context.Context, companyID uuid.UUID, wabaID string) (Snapshot, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("billing.WorkflowSnapshot: %w", err)
	}

	count, err := s.workflows.Count(ctx, companyID, wabaID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("billing.WorkflowSnapshot: %w", err)
	}

	p := PlanByID(company.Plan)
	return newSnapshot(p, company.SubscriptionStatus, count, p.MaxWorkflows), nil
}

// TeamSnapshot computes a fresh team-size quota snapshot.
func (s *Service) TeamSnapshot(ctx context.Context, companyID uuid.UUID) (Snapshot, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("billing.TeamSnapshot: %w", err)
	}

	count, err := s.users.Count(ctx, companyID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("billing.TeamSnapshot: %w", err)
	}

	p := PlanByID(company.Plan)
	return newSnapshot(p, company.SubscriptionStatus, count, p.MaxTeamMembers), nil
}

// WorkflowSnapshotCached serves the read-only limit endpoint through the
// cache. Create gates never use this path.
func (s *Service) WorkflowSnapshotCached(ctx context.Context, companyID uuid.UUID, wabaID string) (Snapshot, error) {
	key := fmt.Sprintf("limits:workflow:%s:%s", companyID, wabaID)
	return s.cached(ctx, key, func() (Snapshot, error) {
		return s.WorkflowSnapshot(ctx, companyID, wabaID)
	})
}

// TeamSnapshotCached serves the read-only team-limit endpoint through the cache.
func (s *Service) TeamSnapshotCached(ctx context.Context, companyID uuid.UUID) (Snapshot, error) {
	key := fmt.Sprintf("limits:team:%s", companyID)
	return s.cached(ctx, key, func() (Snapshot, error) {
		return s.TeamSnapshot(ctx, companyID)
	})
}

func (s *Service) cached(ctx context.Context, key string, compute func() (Snapshot, error)) (Snapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("billing: snapshot cache read failed")
		} else if ok {
			return snap, nil
		}
	}

	snap, err := compute()
	if err != nil {
		return Snapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snap, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("billing: snapshot cache write failed")
		}
	}

	return snap, nil
}

// CheckWorkflowCreate gates workflow creation. The limit check runs first and
// is independent of subscription status; an inactive subscription under the
// limit fails with ErrSubscriptionInactive.
func (s *Service) CheckWorkflowCreate(ctx context.Context, companyID uuid.UUID, wabaID string) (Snapshot, error) {
	snap, err := s.WorkflowSnapshot(ctx, companyID, wabaID)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, gate(snap)
}

// CheckTeamCreate gates team-member creation with the same two-error pattern.
func (s *Service) CheckTeamCreate(ctx context.Context, companyID uuid.UUID) (Snapshot, error) {
	snap, err := s.TeamSnapshot(ctx, companyID)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, gate(snap)
}

func gate(snap Snapshot) error {
	if snap.Limit != Unlimited && snap.CurrentCount >= snap.Limit {
		return ErrLimitReached
	}
	if snap.SubscriptionStatus != domain.SubscriptionActive {
		return ErrSubscriptionInactive
	}
	return nil
}
