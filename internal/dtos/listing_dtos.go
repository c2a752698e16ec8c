package dtos

import (
	"github.com/estia/marketplace-service/internal/models"
)

// CreateListingRequest is the seller-facing submission payload. Required
// fields are checked by the service into a field-keyed error map rather than
// by struct tags, so the caller gets all missing fields in one response.
type CreateListingRequest struct {
	PropertyType     string  `json:"property_type"`
	Title            string  `json:"title"`
	ShortDescription string  `json:"short_description"`
	FullDescription  string  `json:"full_description"`
	Price            float64 `json:"price"`
	Area             float64 `json:"area"`

	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	PostalCode string `json:"postal_code"`

	// Geocoordinates arrive as strings from the map widget; non-numeric
	// values fall back to the Athens city-center default.
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`

	Residential *models.ResidentialFeatures `json:"residential,omitempty"`
	Commercial  *models.CommercialFeatures  `json:"commercial,omitempty"`
	Plot        *models.PlotFeatures        `json:"plot,omitempty"`
}

type RequestInfoRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

type UpdateProgressStageRequest struct {
	Tracker string `json:"tracker" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=PENDING COMPLETED"`
}
