package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/models"
)

type PropertyProgressRepository interface {
	Create(ctx context.Context, p *models.PropertyProgress) error
	GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.PropertyProgress, error)
	UpdateIfVersion(ctx context.Context, p *models.PropertyProgress, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, propertyID uuid.UUID, mutate func(*models.PropertyProgress) error) error
}

type propertyProgressRepo struct {
	*BaseVersionedRepo[*models.PropertyProgress]
	db DB
}

func NewPropertyProgressRepository(db DB) PropertyProgressRepository {
	r := &propertyProgressRepo{db: db}
	selectStmt := baseSelectProgress() + " WHERE property_id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProgress)
	return r
}

func (r *propertyProgressRepo) Create(ctx context.Context, p *models.PropertyProgress) error {
	notes, err := json.Marshal(p.Notifications)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO property_progress (
            property_id, legal_documents_status, platform_review_status,
            platform_assignment_status, listing_status, notifications,
            updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW(), 1)
    `,
		p.PropertyID,
		p.LegalDocumentsStatus,
		p.PlatformReviewStatus,
		p.PlatformAssignmentStatus,
		p.ListingStatus,
		notes,
	)
	return err
}

func (r *propertyProgressRepo) GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.PropertyProgress, error) {
	return r.BaseVersionedRepo.GetByID(ctx, propertyID.String())
}

func (r *propertyProgressRepo) UpdateIfVersion(ctx context.Context, p *models.PropertyProgress, expected int64) (pgconn.CommandTag, error) {
	notes, err := json.Marshal(p.Notifications)
	if err != nil {
		return nil, err
	}
	return r.db.Exec(ctx, `
        UPDATE property_progress SET
            legal_documents_status=$1, platform_review_status=$2,
            platform_assignment_status=$3, listing_status=$4, notifications=$5,
            updated_at=NOW(), row_version=row_version+1
        WHERE property_id=$6 AND row_version=$7
    `,
		p.LegalDocumentsStatus,
		p.PlatformReviewStatus,
		p.PlatformAssignmentStatus,
		p.ListingStatus,
		notes,
		p.PropertyID,
		expected,
	)
}

func (r *propertyProgressRepo) UpdateWithRetry(ctx context.Context, propertyID uuid.UUID, mutate func(*models.PropertyProgress) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, propertyID.String(), mutate, r.UpdateIfVersion)
}

func baseSelectProgress() string {
	return `
        SELECT
            property_id, legal_documents_status, platform_review_status,
            platform_assignment_status, listing_status, notifications,
            updated_at, row_version
        FROM property_progress
    `
}

func scanProgress(row pgx.Row) (*models.PropertyProgress, error) {
	var (
		p     models.PropertyProgress
		notes []byte
	)
	err := row.Scan(
		&p.PropertyID,
		&p.LegalDocumentsStatus,
		&p.PlatformReviewStatus,
		&p.PlatformAssignmentStatus,
		&p.ListingStatus,
		&notes,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &p.Notifications); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
