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

type ContactGroupRepo struct {
	pool *pgxpool.Pool
}

func NewContactGroupRepo(pool *pgxpool.Pool) *ContactGroupRepo {
	return &ContactGroupRepo{pool: pool}
}

const groupColumns = `id, owner_id, waba_id, name, description, color, contact_ids, created_at, updated_at`

func scanGroup(row pgx.Row) (*domain.ContactGroup, error) {
	var g domain.ContactGroup
	err := row.Scan(&g.ID, &g.OwnerID, &g.WabaID, &g.Name, &g.Description, &g.Color,
		&g.ContactIDs, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// Derived invariant: contactCount equals the membership cardinality at
	// read time.
	g.ContactCount = len(g.ContactIDs)
	return &g, nil
}

func (r *ContactGroupRepo) Create(ctx context.Context, g *domain.ContactGroup) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contact_groups (id, owner_id, waba_id, name, description, color, contact_ids, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, g.OwnerID, g.WabaID, g.Name, g.Description, g.Color, g.ContactIDs, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("groupRepo.Create: %w", err)
	}

	return nil
}

func (r *ContactGroupRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.ContactGroup, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM contact_groups WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("groupRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("groupRepo.GetByID: %w", err)
	}

	return g, nil
}

func (r *ContactGroupRepo) List(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*domain.ContactGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM contact_groups WHERE owner_id = $1 AND waba_id = $2`
	args := []any{ownerID, wabaID}

	if search != "" {
		query += ` AND (name ILIKE $3 OR description ILIKE $3)`
		args = append(args, "%"+search+"%")
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("groupRepo.List: %w", err)
	}
	defer rows.Close()

	var groups []*domain.ContactGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("groupRepo.List: scan: %w", err)
		}
		groups = append(groups, g)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("groupRepo.List: rows: %w", err)
	}

	return groups, nil
}

// Update replaces name/description/color/membership wholesale. Concurrent
// edits are last-write-wins.
func (r *ContactGroupRepo) Update(ctx context.Context, g *domain.ContactGroup) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_groups SET name = $1, description = $2, color = $3, contact_ids = $4, updated_at = now()
		 WHERE owner_id = $5 AND id = $6`,
		g.Name, g.Description, g.Color, g.ContactIDs, g.OwnerID, g.ID,
	)
	if err != nil {
		return fmt.Errorf("groupRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("groupRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete removes the group record only; referenced contacts are untouched.
func (r *ContactGroupRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM contact_groups WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	if err != nil {
		return fmt.Errorf("groupRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("groupRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
