package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sendloop/sendloop/internal/domain"
)

type RoleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{pool: pool}
}

const roleColumns = `id, company_id, name, description, permissions, is_default, created_at, updated_at`

func scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		r         domain.Role
		permsJSON []byte
	)
	err := row.Scan(&r.ID, &r.CompanyID, &r.Name, &r.Description, &permsJSON,
		&r.IsDefault, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(permsJSON) > 0 {
		if err := json.Unmarshal(permsJSON, &r.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	return &r, nil
}

func (r *RoleRepo) Create(ctx context.Context, role *domain.Role) error {
	permsJSON, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("roleRepo.Create: encode permissions: %w", err)
	}

	// isDefault is stored verbatim; no single-default uniqueness is enforced.
	_, err = r.pool.Exec(ctx,
		`INSERT INTO roles (id, company_id, name, description, permissions, is_default, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		role.ID, role.CompanyID, role.Name, role.Description, permsJSON, role.IsDefault,
		role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("roleRepo.Create: %w", err)
	}

	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND id = $2`,
		companyID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("roleRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("roleRepo.GetByID: %w", err)
	}

	return role, nil
}

func (r *RoleRepo) List(ctx context.Context, companyID uuid.UUID) ([]*domain.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE company_id = $1 ORDER BY created_at`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("roleRepo.List: %w", err)
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("roleRepo.List: scan: %w", err)
		}
		roles = append(roles, role)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("roleRepo.List: rows: %w", err)
	}

	return roles, nil
}
