package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sendloop/sendloop/internal/domain"
)

type Store struct {
	pool      *pgxpool.Pool
	users     *UserRepo
	companies *CompanyRepo
	contacts  *ContactRepo
	groups    *ContactGroupRepo
	workflows *WorkflowRepo
	roles     *RoleRepo
	wabas     *WabaAccountRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:      pool,
		users:     NewUserRepo(pool),
		companies: NewCompanyRepo(pool),
		contacts:  NewContactRepo(pool),
		groups:    NewContactGroupRepo(pool),
		workflows: NewWorkflowRepo(pool),
		roles:     NewRoleRepo(pool),
		wabas:     NewWabaAccountRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository          { return s.users }
func (s *Store) Companies() domain.CompanyRepository   { return s.companies }
func (s *Store) Contacts() domain.ContactRepository    { return s.contacts }
func (s *Store) Groups() domain.ContactGroupRepository { return s.groups }
func (s *Store) Workflows() domain.WorkflowRepository  { return s.workflows }
func (s *Store) Roles() domain.RoleRepository          { return s.roles }
func (s *Store) Wabas() domain.WabaAccountRepository   { return s.wabas }
