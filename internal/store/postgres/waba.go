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

type WabaAccountRepo struct {
	pool *pgxpool.Pool
}

func NewWabaAccountRepo(pool *pgxpool.Pool) *WabaAccountRepo {
	return &WabaAccountRepo{pool: pool}
}

const wabaColumns = `waba_id, company_id, phone_number_id, business_name, phone_number, status, access_token, created_at`

func scanWaba(row pgx.Row) (*domain.WabaAccount, error) {
	var w domain.WabaAccount
	err := row.Scan(&w.WabaID, &w.CompanyID, &w.PhoneNumberID, &w.BusinessName,
		&w.PhoneNumber, &w.Status, &w.AccessToken, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WabaAccountRepo) Create(ctx context.Context, w *domain.WabaAccount) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO waba_accounts (waba_id, company_id, phone_number_id, business_name, phone_number, status, access_token, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.WabaID, w.CompanyID, w.PhoneNumberID, w.BusinessName, w.PhoneNumber, w.Status,
		w.AccessToken, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("wabaRepo.Create: %w", err)
	}

	return nil
}

func (r *WabaAccountRepo) GetByID(ctx context.Context, companyID uuid.UUID, wabaID string) (*domain.WabaAccount, error) {
	w, err := scanWaba(r.pool.QueryRow(ctx,
		`SELECT `+wabaColumns+` FROM waba_accounts WHERE company_id = $1 AND waba_id = $2`,
		companyID, wabaID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("wabaRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("wabaRepo.GetByID: %w", err)
	}

	return w, nil
}

func (r *WabaAccountRepo) List(ctx context.Context, companyID uuid.UUID) ([]*domain.WabaAccount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+wabaColumns+` FROM waba_accounts WHERE company_id = $1 ORDER BY created_at`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("wabaRepo.List: %w", err)
	}
	defer rows.Close()

	var wabas []*domain.WabaAccount
	for rows.Next() {
		w, err := scanWaba(rows)
		if err != nil {
			return nil, fmt.Errorf("wabaRepo.List: scan: %w", err)
		}
		wabas = append(wabas, w)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("wabaRepo.List: rows: %w", err)
	}

	return wabas, nil
}
