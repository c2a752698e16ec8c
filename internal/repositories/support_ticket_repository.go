package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/models"
)

type SupportTicketRepository interface {
	Create(ctx context.Context, t *models.SupportTicket) error

	// GetByID loads the ticket without its message log.
	GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	// GetWithMessages loads the ticket and its full ordered message log.
	GetWithMessages(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	ListByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*models.SupportTicket, error)
	ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.SupportTicket, error)

	UpdateIfVersion(ctx context.Context, t *models.SupportTicket, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.SupportTicket) error) error

	// AppendMessage inserts one message and refreshes the ticket's
	// updated_at. Messages are append-only.
	AppendMessage(ctx context.Context, m *models.TicketMessage) error
	ListMessages(ctx context.Context, ticketID uuid.UUID) ([]models.TicketMessage, error)
}

type supportTicketRepo struct {
	*BaseVersionedRepo[*models.SupportTicket]
	db DB
}

func NewSupportTicketRepository(db DB) SupportTicketRepository {
	r := &supportTicketRepo{db: db}
	selectStmt := baseSelectTicket() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanTicket)
	return r
}

func (r *supportTicketRepo) Create(ctx context.Context, t *models.SupportTicket) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO support_tickets (
            id, title, description, status, priority, category,
            creator_id, created_by_id, selected_role, property_id, transaction_id,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
    `,
		t.ID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.Category,
		t.CreatorID,
		t.CreatedByID,
		t.SelectedRole,
		t.PropertyID,
		t.TransactionID,
	)
	return err
}

func (r *supportTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *supportTicketRepo) GetWithMessages(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	msgs, err := r.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Messages = msgs
	return t, nil
}

func (r *supportTicketRepo) ListByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*models.SupportTicket, error) {
	return r.list(ctx, baseSelectTicket()+" WHERE creator_id=$1 ORDER BY created_at DESC", creatorID)
}

func (r *supportTicketRepo) ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.SupportTicket, error) {
	return r.list(ctx, baseSelectTicket()+" WHERE status=$1 ORDER BY created_at DESC", status)
}

func (r *supportTicketRepo) list(ctx context.Context, sql string, args ...interface{}) ([]*models.SupportTicket, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *supportTicketRepo) UpdateIfVersion(ctx context.Context, t *models.SupportTicket, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE support_tickets SET
            status=$1, priority=$2, updated_at=NOW(), row_version=row_version+1
        WHERE id=$3 AND row_version=$4
    `,
		t.Status, t.Priority, t.ID, expected,
	)
}

func (r *supportTicketRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.SupportTicket) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *supportTicketRepo) AppendMessage(ctx context.Context, m *models.TicketMessage) error {
	var metadata []byte
	if m.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(m.Metadata); err != nil {
			return err
		}
	}
	if _, err := r.db.Exec(ctx, `
        INSERT INTO ticket_messages (
            id, ticket_id, user_id, content, is_from_admin, metadata, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW())
    `,
		m.ID,
		m.TicketID,
		m.UserID,
		m.Content,
		m.IsFromAdmin,
		metadata,
	); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `UPDATE support_tickets SET updated_at=NOW() WHERE id=$1`, m.TicketID)
	return err
}

func (r *supportTicketRepo) ListMessages(ctx context.Context, ticketID uuid.UUID) ([]models.TicketMessage, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, ticket_id, user_id, content, is_from_admin, metadata, created_at
        FROM ticket_messages
        WHERE ticket_id=$1
        ORDER BY created_at
    `, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TicketMessage
	for rows.Next() {
		var (
			m        models.TicketMessage
			metadata []byte
		)
		if err := rows.Scan(
			&m.ID, &m.TicketID, &m.UserID, &m.Content, &m.IsFromAdmin,
			&metadata, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			m.Metadata = &models.MessageMetadata{}
			if err := json.Unmarshal(metadata, m.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func baseSelectTicket() string {
	return `
        SELECT
            id, title, description, status, priority, category,
            creator_id, created_by_id, selected_role, property_id, transaction_id,
            created_at, updated_at, row_version
        FROM support_tickets
    `
}

func scanTicket(row pgx.Row) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Category,
		&t.CreatorID,
		&t.CreatedByID,
		&t.SelectedRole,
		&t.PropertyID,
		&t.TransactionID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
