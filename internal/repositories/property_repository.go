package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/estia/marketplace-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error)
	ListByStatus(ctx context.Context, status models.PropertyStatus) ([]*models.Property, error)
	ListPublic(ctx context.Context) ([]*models.Property, error)

	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	images, residential, commercial, plot, err := marshalPropertyJSON(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO properties (
            id, owner_id, property_type, title, short_description, full_description,
            price, area, state, city, street, number, postal_code,
            latitude, longitude, images, residential, commercial, plot,
            status, is_verified, removal_requested, previous_status,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23, NOW(), NOW(), 1)
    `,
		p.ID,
		p.OwnerID,
		p.PropertyType,
		p.Title,
		p.ShortDescription,
		p.FullDescription,
		p.Price,
		p.Area,
		p.State,
		p.City,
		p.Street,
		p.Number,
		p.PostalCode,
		p.Latitude,
		p.Longitude,
		images,
		residential,
		commercial,
		plot,
		p.Status,
		p.IsVerified,
		p.RemovalRequested,
		p.PreviousStatus,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *propertyRepo) ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" WHERE owner_id=$1 ORDER BY created_at", ownerID)
}

func (r *propertyRepo) ListByStatus(ctx context.Context, status models.PropertyStatus) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" WHERE status=$1 ORDER BY created_at", status)
}

// ListPublic returns listings visible to buyers: approved and verified.
func (r *propertyRepo) ListPublic(ctx context.Context) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" WHERE status=$1 AND is_verified ORDER BY created_at DESC", models.StatusApproved)
}

func (r *propertyRepo) list(ctx context.Context, sql string, args ...interface{}) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	images, residential, commercial, plot, err := marshalPropertyJSON(p)
	if err != nil {
		return nil, err
	}
	return r.db.Exec(ctx, `
        UPDATE properties SET
            title=$1, short_description=$2, full_description=$3, price=$4, area=$5,
            state=$6, city=$7, street=$8, number=$9, postal_code=$10,
            latitude=$11, longitude=$12, images=$13, residential=$14, commercial=$15, plot=$16,
            status=$17, is_verified=$18, removal_requested=$19, previous_status=$20,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$21 AND row_version=$22
    `,
		p.Title, p.ShortDescription, p.FullDescription, p.Price, p.Area,
		p.State, p.City, p.Street, p.Number, p.PostalCode,
		p.Latitude, p.Longitude, images, residential, commercial, plot,
		p.Status, p.IsVerified, p.RemovalRequested, p.PreviousStatus,
		p.ID, expected,
	)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func baseSelectProperty() string {
	return `
        SELECT
            id, owner_id, property_type, title, short_description, full_description,
            price, area, state, city, street, number, postal_code,
            latitude, longitude, images, residential, commercial, plot,
            status, is_verified, removal_requested, previous_status,
            created_at, updated_at, row_version
        FROM properties
    `
}

func marshalPropertyJSON(p *models.Property) (images, residential, commercial, plot []byte, err error) {
	if images, err = json.Marshal(p.Images); err != nil {
		return
	}
	if p.Residential != nil {
		if residential, err = json.Marshal(p.Residential); err != nil {
			return
		}
	}
	if p.Commercial != nil {
		if commercial, err = json.Marshal(p.Commercial); err != nil {
			return
		}
	}
	if p.Plot != nil {
		plot, err = json.Marshal(p.Plot)
	}
	return
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p           models.Property
		images      []byte
		residential []byte
		commercial  []byte
		plot        []byte
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.PropertyType,
		&p.Title,
		&p.ShortDescription,
		&p.FullDescription,
		&p.Price,
		&p.Area,
		&p.State,
		&p.City,
		&p.Street,
		&p.Number,
		&p.PostalCode,
		&p.Latitude,
		&p.Longitude,
		&images,
		&residential,
		&commercial,
		&plot,
		&p.Status,
		&p.IsVerified,
		&p.RemovalRequested,
		&p.PreviousStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, err
		}
	}
	if len(residential) > 0 {
		p.Residential = &models.ResidentialFeatures{}
		if err := json.Unmarshal(residential, p.Residential); err != nil {
			return nil, err
		}
	}
	if len(commercial) > 0 {
		p.Commercial = &models.CommercialFeatures{}
		if err := json.Unmarshal(commercial, p.Commercial); err != nil {
			return nil, err
		}
	}
	if len(plot) > 0 {
		p.Plot = &models.PlotFeatures{}
		if err := json.Unmarshal(plot, p.Plot); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
