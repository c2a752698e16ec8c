package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/estia/marketplace-service/internal/models"
)

// Subjects consumed by the admin dashboard in place of the old 5-second
// polling loop. Consumers only need "eventually reflects latest state".
const (
	SubjectListingStatusChanged    = "listings.status.changed"
	SubjectTransactionStageChanged = "transactions.stage.changed"
)

type ListingStatusEvent struct {
	PropertyID uuid.UUID             `json:"property_id"`
	Status     models.PropertyStatus `json:"status"`
	IsVerified bool                  `json:"is_verified"`
	OccurredAt time.Time             `json:"occurred_at"`
}

type TransactionStageEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	PropertyID    uuid.UUID               `json:"property_id"`
	Stage         models.TransactionStage `json:"stage"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, jsonData)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
