package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/estia/marketplace-service/internal/utils"
)

type StageStatus string

const (
	ProgressNotStarted StageStatus = "NOT_STARTED"
	ProgressPending    StageStatus = "PENDING"
	ProgressCompleted  StageStatus = "COMPLETED"
)

// Tracker names accepted by UpdateStage.
const (
	TrackerLegalDocuments     = "legal_documents"
	TrackerPlatformReview     = "platform_review"
	TrackerPlatformAssignment = "platform_assignment"
	TrackerListing            = "listing"
)

// ProgressNote is a synthetic audit entry appended on every tracker change.
type ProgressNote struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// PropertyProgress tracks the four independent onboarding stages of a
// listing. No tracker ever advances another.
type PropertyProgress struct {
	PropertyID uuid.UUID `json:"property_id"`

	LegalDocumentsStatus     StageStatus `json:"legal_documents_status"`
	PlatformReviewStatus     StageStatus `json:"platform_review_status"`
	PlatformAssignmentStatus StageStatus `json:"platform_assignment_status"`
	ListingStatus            StageStatus `json:"listing_status"`

	Notifications []ProgressNote `json:"notifications"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Versioned
}

func (p *PropertyProgress) GetID() string { return p.PropertyID.String() }

// NewPropertyProgress returns the zero-progress record created alongside a
// listing submission.
func NewPropertyProgress(propertyID uuid.UUID) *PropertyProgress {
	return &PropertyProgress{
		PropertyID:               propertyID,
		LegalDocumentsStatus:     ProgressNotStarted,
		PlatformReviewStatus:     ProgressNotStarted,
		PlatformAssignmentStatus: ProgressNotStarted,
		ListingStatus:            ProgressNotStarted,
	}
}

// SetTracker mutates exactly the named tracker and returns its old value.
func (p *PropertyProgress) SetTracker(name string, status StageStatus) (StageStatus, error) {
	var field *StageStatus
	switch name {
	case TrackerLegalDocuments:
		field = &p.LegalDocumentsStatus
	case TrackerPlatformReview:
		field = &p.PlatformReviewStatus
	case TrackerPlatformAssignment:
		field = &p.PlatformAssignmentStatus
	case TrackerListing:
		field = &p.ListingStatus
	default:
		return "", fmt.Errorf("%w: %q", utils.ErrUnknownTracker, name)
	}
	old := *field
	*field = status
	return old, nil
}
