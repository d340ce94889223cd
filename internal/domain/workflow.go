package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Node is one step of a workflow graph as laid out in the visual builder.
// Data is opaque builder metadata; no execution semantics live here.
type Node struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Edge connects two nodes of a workflow graph.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailure ExecutionStatus = "failure"
)

type Workflow struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"companyId"`
	WabaID      string     `json:"wabaId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"isActive"`
	Nodes       []Node     `json:"nodes"`
	Edges       []Edge     `json:"edges"`
	Triggers    []string   `json:"triggers"`
	// Version increments on every accepted structural update. It is never
	// used as a write precondition: concurrent edits are last-write-wins.
	Version        int        `json:"version"`
	ExecutionCount int        `json:"executionCount"`
	SuccessCount   int        `json:"successCount"`
	FailureCount   int        `json:"failureCount"`
	LastTriggered  *time.Time `json:"lastTriggered,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type WorkflowRepository interface {
	Create(ctx context.Context, w *Workflow) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*Workflow, error)
	List(ctx context.Context, companyID uuid.UUID, wabaID string) ([]*Workflow, error)
	Count(ctx context.Context, companyID uuid.UUID, wabaID string) (int, error)
	// UpdateStructure replaces name/description/nodes/edges/triggers and
	// increments version atomically.
	UpdateStructure(ctx context.Context, w *Workflow) error
	SetActive(ctx context.Context, companyID, id uuid.UUID, active bool) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	// RecordExecution is called on behalf of the external execution engine;
	// nothing in this service runs workflows.
	RecordExecution(ctx context.Context, id uuid.UUID, status ExecutionStatus, triggeredAt time.Time) error
}
