package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sendloop/sendloop/internal/domain"
)

type WorkflowRepo struct {
	pool *pgxpool.Pool
}

func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

const workflowColumns = `id, company_id, waba_id, name, description, is_active, nodes, edges, triggers,
	version, execution_count, success_count, failure_count, last_triggered, created_at, updated_at`

func scanWorkflow(row pgx.Row) (*domain.Workflow, error) {
	var (
		w         domain.Workflow
		nodesJSON []byte
		edgesJSON []byte
	)
	err := row.Scan(&w.ID, &w.CompanyID, &w.WabaID, &w.Name, &w.Description, &w.IsActive,
		&nodesJSON, &edgesJSON, &w.Triggers, &w.Version, &w.ExecutionCount, &w.SuccessCount,
		&w.FailureCount, &w.LastTriggered, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(nodesJSON) > 0 {
		if err := json.Unmarshal(nodesJSON, &w.Nodes); err != nil {
			return nil, fmt.Errorf("decode nodes: %w", err)
		}
	}
	if len(edgesJSON) > 0 {
		if err := json.Unmarshal(edgesJSON, &w.Edges); err != nil {
			return nil, fmt.Errorf("decode edges: %w", err)
		}
	}
	return &w, nil
}

func marshalGraph(w *domain.Workflow) (nodes, edges []byte, err error) {
	nodes, err = json.Marshal(w.Nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("encode nodes: %w", err)
	}
	edges, err = json.Marshal(w.Edges)
	if err != nil {
		return nil, nil, fmt.Errorf("encode edges: %w", err)
	}
	return nodes, edges, nil
}

func (r *WorkflowRepo) Create(ctx context.Context, w *domain.Workflow) error {
	nodesJSON, edgesJSON, err := marshalGraph(w)
	if err != nil {
		return fmt.Errorf("workflowRepo.Create: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO workflows (id, company_id, waba_id, name, description, is_active, nodes, edges, triggers, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		w.ID, w.CompanyID, w.WabaID, w.Name, w.Description, w.IsActive, nodesJSON, edgesJSON,
		w.Triggers, w.Version, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("workflowRepo.Create: %w", err)
	}

	return nil
}

func (r *WorkflowRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Workflow, error) {
	w, err := scanWorkflow(r.pool.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE company_id = $1 AND id = $2`,
		companyID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workflowRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("workflowRepo.GetByID: %w", err)
	}

	return w, nil
}

func (r *WorkflowRepo) List(ctx context.Context, companyID uuid.UUID, wabaID string) ([]*domain.Workflow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE company_id = $1 AND waba_id = $2
		 ORDER BY created_at DESC`,
		companyID, wabaID,
	)
	if err != nil {
		return nil, fmt.Errorf("workflowRepo.List: %w", err)
	}
	defer rows.Close()

	var workflows []*domain.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("workflowRepo.List: scan: %w", err)
		}
		workflows = append(workflows, w)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("workflowRepo.List: rows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepo) Count(ctx context.Context, companyID uuid.UUID, wabaID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM workflows WHERE company_id = $1 AND waba_id = $2`,
		companyID, wabaID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("workflowRepo.Count: %w", err)
	}

	return n, nil
}

// UpdateStructure replaces the editable fields and bumps version in the same
// statement. Version is not a write precondition; concurrent structural edits
// are last-write-wins with the increment applied to whichever row state wins.
func (r *WorkflowRepo) UpdateStructure(ctx context.Context, w *domain.Workflow) error {
	nodesJSON, edgesJSON, err := marshalGraph(w)
	if err != nil {
		return fmt.Errorf("workflowRepo.UpdateStructure: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE workflows SET name = $1, description = $2, nodes = $3, edges = $4, triggers = $5,
		        version = version + 1, updated_at = now()
		 WHERE company_id = $6 AND id = $7`,
		w.Name, w.Description, nodesJSON, edgesJSON, w.Triggers, w.CompanyID, w.ID,
	)
	if err != nil {
		return fmt.Errorf("workflowRepo.UpdateStructure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workflowRepo.UpdateStructure: %w", domain.ErrNotFound)
	}

	return nil
}

// SetActive toggles the activation flag without touching version.
func (r *WorkflowRepo) SetActive(ctx context.Context, companyID, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workflows SET is_active = $1, updated_at = now() WHERE company_id = $2 AND id = $3`,
		active, companyID, id,
	)
	if err != nil {
		return fmt.Errorf("workflowRepo.SetActive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workflowRepo.SetActive: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete is unconditional and does not revert execution counters elsewhere.
func (r *WorkflowRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM workflows WHERE company_id = $1 AND id = $2`,
		companyID, id,
	)
	if err != nil {
		return fmt.Errorf("workflowRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workflowRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

// RecordExecution applies one run result reported by the external engine.
func (r *WorkflowRepo) RecordExecution(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus, triggeredAt time.Time) error {
	successInc := 0
	failureInc := 0
	if status == domain.ExecutionSuccess {
		successInc = 1
	} else {
		failureInc = 1
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE workflows SET execution_count = execution_count + 1,
		        success_count = success_count + $1,
		        failure_count = failure_count + $2,
		        last_triggered = $3
		 WHERE id = $4`,
		successInc, failureInc, triggeredAt, id,
	)
	if err != nil {
		return fmt.Errorf("workflowRepo.RecordExecution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workflowRepo.RecordExecution: %w", domain.ErrNotFound)
	}

	return nil
}
