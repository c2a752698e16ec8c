package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/estia/marketplace-service/internal/utils"
)

func TestNewPropertyProgress(t *testing.T) {
	p := NewPropertyProgress(uuid.New())
	for name, status := range map[string]StageStatus{
		"legal_documents":     p.LegalDocumentsStatus,
		"platform_review":     p.PlatformReviewStatus,
		"platform_assignment": p.PlatformAssignmentStatus,
		"listing":             p.ListingStatus,
	} {
		if status != ProgressNotStarted {
			t.Errorf("tracker %s starts at %s, want %s", name, status, ProgressNotStarted)
		}
	}
}

func TestSetTrackerMutatesOnlyNamedField(t *testing.T) {
	p := NewPropertyProgress(uuid.New())

	old, err := p.SetTracker(TrackerPlatformReview, ProgressCompleted)
	if err != nil {
		t.Fatalf("SetTracker returned error: %v", err)
	}
	if old != ProgressNotStarted {
		t.Errorf("old status = %s, want %s", old, ProgressNotStarted)
	}
	if p.PlatformReviewStatus != ProgressCompleted {
		t.Errorf("platform_review = %s, want %s", p.PlatformReviewStatus, ProgressCompleted)
	}

	// The other three trackers stay untouched.
	if p.LegalDocumentsStatus != ProgressNotStarted ||
		p.PlatformAssignmentStatus != ProgressNotStarted ||
		p.ListingStatus != ProgressNotStarted {
		t.Error("SetTracker mutated a tracker other than the named one")
	}
}

func TestSetTrackerUnknownName(t *testing.T) {
	p := NewPropertyProgress(uuid.New())
	if _, err := p.SetTracker("paperwork", ProgressPending); !errors.Is(err, utils.ErrUnknownTracker) {
		t.Fatalf("expected ErrUnknownTracker, got %v", err)
	}
}
