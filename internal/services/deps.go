package services

import (
	"context"

	"github.com/estia/marketplace-service/internal/models"
)

// Collaborator contracts the services depend on. The concrete adapters live
// in internal/{cache,events,notifications,storage}; tests substitute fakes.

type ListingCache interface {
	GetListing(ctx context.Context, id string) (*models.Property, error)
	SetListing(ctx context.Context, p *models.Property) error
	DeleteListing(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type MediaUploader interface {
	Upload(ctx context.Context, originalFileName string, data []byte, contentType string) (string, error)
}

type Notifier interface {
	NotifyStageChange(ctx context.Context, sellerEmail, sellerName, propertyTitle, propertyID string, stage models.TransactionStage) error
	NotifyUrgentTicket(ctx context.Context, ticket *models.SupportTicket) error
	SendModerationDigest(ctx context.Context, adminEmails []string, pendingCount int) error
}
