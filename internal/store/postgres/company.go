package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sendloop/sendloop/internal/domain"
)

type CompanyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `id, name, address, website, industry, category, location, phone, country_code, size, logo_url, plan, subscription_status, created_at, updated_at`

func (r *CompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Name, c.Address, c.Website, c.Industry, c.Category, c.Location, c.Phone,
		c.CountryCode, c.Size, c.LogoURL, c.Plan, c.SubscriptionStatus, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("companyRepo.Create: %w", err)
	}

	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var c domain.Company

	err := r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Address, &c.Website, &c.Industry, &c.Category, &c.Location,
		&c.Phone, &c.CountryCode, &c.Size, &c.LogoURL, &c.Plan, &c.SubscriptionStatus,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("companyRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("companyRepo.GetByID: %w", err)
	}

	return &c, nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $1, address = $2, website = $3, industry = $4, category = $5,
		        location = $6, phone = $7, country_code = $8, size = $9, logo_url = $10, updated_at = now()
		 WHERE id = $11`,
		c.Name, c.Address, c.Website, c.Industry, c.Category, c.Location, c.Phone,
		c.CountryCode, c.Size, c.LogoURL, c.ID,
	)
	if err != nil {
		return fmt.Errorf("companyRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("companyRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}
