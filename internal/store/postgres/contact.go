package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sendloop/sendloop/internal/domain"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

const contactColumns = `id, owner_id, waba_id, name, phone, email, whatsapp_opt_in, tags, notes, is_active, created_at, last_message_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var (
		c        domain.Contact
		tagsJSON []byte
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.WabaID, &c.Name, &c.Phone, &c.Email,
		&c.WhatsAppOptIn, &tagsJSON, &c.Notes, &c.IsActive, &c.CreatedAt, &c.LastMessageAt)
	if err != nil {
		return nil, err
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &c.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &c, nil
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	c.NormalizeTags()

	tagsJSON, err := json.Marshal(c.Tags)
	if err != nil {
		return fmt.Errorf("contactRepo.Create: encode tags: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO contacts (id, owner_id, waba_id, name, phone, email, whatsapp_opt_in, tags, notes, is_active, created_at, last_message_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.OwnerID, c.WabaID, c.Name, c.Phone, c.Email, c.WhatsAppOptIn, tagsJSON,
		c.Notes, c.IsActive, c.CreatedAt, c.LastMessageAt,
	)
	if err != nil {
		return fmt.Errorf("contactRepo.Create: %w", err)
	}

	return nil
}

func (r *ContactRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("contactRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("contactRepo.GetByID: %w", err)
	}

	return c, nil
}

func (r *ContactRepo) List(ctx context.Context, ownerID uuid.UUID, wabaID, search string) ([]*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 AND waba_id = $2`
	args := []any{ownerID, wabaID}

	if search != "" {
		query += ` AND (name ILIKE $3 OR phone ILIKE $3 OR email ILIKE $3)`
		args = append(args, "%"+search+"%")
	}

	query += ` ORDER BY created_at DESC`

	return r.queryContacts(ctx, "contactRepo.List", query, args...)
}

func (r *ContactRepo) ListActive(ctx context.Context, ownerID uuid.UUID, wabaID string) ([]*domain.Contact, error) {
	return r.queryContacts(ctx, "contactRepo.ListActive",
		`SELECT `+contactColumns+` FROM contacts
		 WHERE owner_id = $1 AND waba_id = $2 AND is_active
		 ORDER BY created_at DESC`,
		ownerID, wabaID,
	)
}

func (r *ContactRepo) ListByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	return r.queryContacts(ctx, "contactRepo.ListByIDs",
		`SELECT `+contactColumns+` FROM contacts
		 WHERE owner_id = $1 AND id = ANY($2)
		 ORDER BY created_at DESC`,
		ownerID, ids,
	)
}

// Resolve evaluates a validated audience filter list (conjunctive) against
// the contact store.
func (r *ContactRepo) Resolve(ctx context.Context, ownerID uuid.UUID, wabaID string, filters []domain.Filter) ([]*domain.Contact, error) {
	if err := domain.ValidateFilters(filters); err != nil {
		return nil, fmt.Errorf("contactRepo.Resolve: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 AND waba_id = $2 AND is_active`)
	args := []any{ownerID, wabaID}

	for _, f := range filters {
		cond, condArgs := filterCondition(f, len(args)+1)
		sb.WriteString(" AND " + cond)
		args = append(args, condArgs...)
	}

	sb.WriteString(` ORDER BY created_at DESC`)

	return r.queryContacts(ctx, "contactRepo.Resolve", sb.String(), args...)
}

// filterCondition translates one filter into a SQL predicate. Filters reach
// this point already validated against the field registry, so unknown
// combinations cannot occur.
func filterCondition(f domain.Filter, argPos int) (string, []any) {
	ph := "$" + strconv.Itoa(argPos)

	switch f.Field {
	case "tag":
		switch f.Op {
		case domain.OpEq:
			return `tags @> to_jsonb(` + ph + `::text)`, []any{f.Value}
		case domain.OpNeq:
			return `NOT tags @> to_jsonb(` + ph + `::text)`, []any{f.Value}
		default: // exists
			return `jsonb_array_length(tags) > 0`, nil
		}
	case "optIn":
		if f.Op == domain.OpEq {
			return `whatsapp_opt_in = ` + ph + `::boolean`, []any{f.Value}
		}
		return `whatsapp_opt_in <> ` + ph + `::boolean`, []any{f.Value}
	case "lastMessageAt":
		switch f.Op {
		case domain.OpBefore:
			return `last_message_at < ` + ph + `::timestamptz`, []any{f.Value}
		case domain.OpAfter:
			return `last_message_at > ` + ph + `::timestamptz`, []any{f.Value}
		default: // exists
			return `last_message_at IS NOT NULL`, nil
		}
	case "createdAt":
		if f.Op == domain.OpBefore {
			return `created_at < ` + ph + `::timestamptz`, []any{f.Value}
		}
		return `created_at > ` + ph + `::timestamptz`, []any{f.Value}
	default: // name, phone, email text traits
		col := map[string]string{"name": "name", "phone": "phone", "email": "email"}[f.Field]
		switch f.Op {
		case domain.OpEq:
			return col + ` = ` + ph, []any{f.Value}
		case domain.OpNeq:
			return col + ` <> ` + ph, []any{f.Value}
		case domain.OpContains:
			return col + ` ILIKE ` + ph, []any{"%" + f.Value + "%"}
		default: // exists
			return col + ` <> ''`, nil
		}
	}
}

func (r *ContactRepo) queryContacts(ctx context.Context, op, query string, args ...any) ([]*domain.Contact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		contacts = append(contacts, c)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return contacts, nil
}
