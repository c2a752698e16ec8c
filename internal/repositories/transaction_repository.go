package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.Transaction, error)
	ListByStage(ctx context.Context, stage models.TransactionStage) ([]*models.Transaction, error)

	UpdateIfVersion(ctx context.Context, t *models.Transaction, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Transaction) error) error

	// AppendUpdate adds one entry to the transaction's notification log.
	AppendUpdate(ctx context.Context, u *models.Update, transactionID uuid.UUID) error
	ListUpdates(ctx context.Context, transactionID uuid.UUID) ([]models.Update, error)
}

type transactionRepo struct {
	*BaseVersionedRepo[*models.Transaction]
	db DB
}

func NewTransactionRepository(db DB) TransactionRepository {
	r := &transactionRepo{db: db}
	selectStmt := baseSelectTransaction() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanTransaction)
	return r
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO transactions (
            id, property_id, buyer_id, seller_id, agent_id, stage,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), 1)
    `,
		t.ID,
		t.PropertyID,
		t.BuyerID,
		t.SellerID,
		t.AgentID,
		t.Stage,
	)
	return err
}

func (r *transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *transactionRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.Transaction, error) {
	return r.list(ctx, baseSelectTransaction()+" WHERE property_id=$1 ORDER BY created_at", propertyID)
}

func (r *transactionRepo) ListByStage(ctx context.Context, stage models.TransactionStage) ([]*models.Transaction, error) {
	return r.list(ctx, baseSelectTransaction()+" WHERE stage=$1 ORDER BY created_at", stage)
}

func (r *transactionRepo) list(ctx context.Context, sql string, args ...interface{}) ([]*models.Transaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transactionRepo) UpdateIfVersion(ctx context.Context, t *models.Transaction, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE transactions SET
            stage=$1, agent_id=$2, updated_at=NOW(), row_version=row_version+1
        WHERE id=$3 AND row_version=$4
    `,
		t.Stage, t.AgentID, t.ID, expected,
	)
}

func (r *transactionRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Transaction) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *transactionRepo) AppendUpdate(ctx context.Context, u *models.Update, transactionID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO transaction_updates (
            id, transaction_id, text, message, recipient, category,
            is_unread, stage, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW())
    `,
		u.ID,
		transactionID,
		u.Text,
		u.Message,
		u.Recipient,
		u.Category,
		u.IsUnread,
		u.Stage,
	)
	return err
}

func (r *transactionRepo) ListUpdates(ctx context.Context, transactionID uuid.UUID) ([]models.Update, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, text, message, recipient, category, is_unread, stage, created_at
        FROM transaction_updates
        WHERE transaction_id=$1
        ORDER BY created_at
    `, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Update
	for rows.Next() {
		var u models.Update
		if err := rows.Scan(
			&u.ID, &u.Text, &u.Message, &u.Recipient, &u.Category,
			&u.IsUnread, &u.Stage, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func baseSelectTransaction() string {
	return `
        SELECT
            id, property_id, buyer_id, seller_id, agent_id, stage,
            created_at, updated_at, row_version
        FROM transactions
    `
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.PropertyID,
		&t.BuyerID,
		&t.SellerID,
		&t.AgentID,
		&t.Stage,
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
