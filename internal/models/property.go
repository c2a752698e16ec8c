package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeVilla      PropertyType = "VILLA"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
	PropertyTypePlot       PropertyType = "PLOT"
)

// ParsePropertyType converts request strings to the enum.
func ParsePropertyType(s string) (PropertyType, error) {
	switch PropertyType(s) {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeVilla,
		PropertyTypeCommercial, PropertyTypePlot:
		return PropertyType(s), nil
	default:
		return "", fmt.Errorf("invalid property type: %q", s)
	}
}

// IsResidential reports whether the type carries residential features.
func (t PropertyType) IsResidential() bool {
	return t == PropertyTypeApartment || t == PropertyTypeHouse || t == PropertyTypeVilla
}

type PropertyStatus string

const (
	StatusPending       PropertyStatus = "PENDING"
	StatusApproved      PropertyStatus = "APPROVED"
	StatusRejected      PropertyStatus = "REJECTED"
	StatusInfoRequested PropertyStatus = "INFO_REQUESTED"
	StatusUnavailable   PropertyStatus = "UNAVAILABLE"
)

// ResidentialFeatures is valid for APARTMENT, HOUSE and VILLA listings.
type ResidentialFeatures struct {
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *int     `json:"bathrooms,omitempty"`
	Floor         *int     `json:"floor,omitempty"`
	HeatingType   *string  `json:"heating_type,omitempty"`
	HeatingSystem *string  `json:"heating_system,omitempty"`
	Windows       *string  `json:"windows,omitempty"`
	Flooring      *string  `json:"flooring,omitempty"`
	EnergyClass   *string  `json:"energy_class,omitempty"`
	PoolType      *string  `json:"pool_type,omitempty"`
	BalconyArea   *float64 `json:"balcony_area,omitempty"`
	HasStorage    bool     `json:"has_storage"`
	HasParking    bool     `json:"has_parking"`
	HasGarden     bool     `json:"has_garden"`
	HasFireplace  bool     `json:"has_fireplace"`
	HasAlarm      bool     `json:"has_alarm"`
	IsFurnished   bool     `json:"is_furnished"`
}

// CommercialFeatures is valid for COMMERCIAL listings.
type CommercialFeatures struct {
	Subtype       *string `json:"subtype,omitempty"`
	Rooms         *int    `json:"rooms,omitempty"`
	StorageType   *string `json:"storage_type,omitempty"`
	ElevatorType  *string `json:"elevator_type,omitempty"`
	FireproofDoor bool    `json:"fireproof_door"`
	LoadingRamp   bool    `json:"loading_ramp"`
	TruckAccess   bool    `json:"truck_access"`
}

// PlotFeatures is valid for PLOT listings.
type PlotFeatures struct {
	Category            *string  `json:"category,omitempty"`
	OwnershipType       *string  `json:"ownership_type,omitempty"`
	BuildingCoefficient *float64 `json:"building_coefficient,omitempty"`
	CoverageRatio       *float64 `json:"coverage_ratio,omitempty"`
	FacadeLength        *float64 `json:"facade_length,omitempty"`
	Sides               *int     `json:"sides,omitempty"`
	BuildableArea       *float64 `json:"buildable_area,omitempty"`
	HasBuildingPermit   bool     `json:"has_building_permit"`
	RoadAccess          *string  `json:"road_access,omitempty"`
	Terrain             *string  `json:"terrain,omitempty"`
	Shape               *string  `json:"shape,omitempty"`
	Suitability         *string  `json:"suitability,omitempty"`
}

type Property struct {
	ID               uuid.UUID    `json:"id"`
	OwnerID          uuid.UUID    `json:"owner_id"`
	PropertyType     PropertyType `json:"property_type"`
	Title            string       `json:"title"`
	ShortDescription string       `json:"short_description"`
	FullDescription  string       `json:"full_description"`
	Price            float64      `json:"price"`
	Area             float64      `json:"area"`

	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	PostalCode string `json:"postal_code"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Images []string `json:"images"`

	// Exactly one of the feature groups is set, matching PropertyType.
	Residential *ResidentialFeatures `json:"residential,omitempty"`
	Commercial  *CommercialFeatures  `json:"commercial,omitempty"`
	Plot        *PlotFeatures        `json:"plot,omitempty"`

	Status           PropertyStatus  `json:"status"`
	IsVerified       bool            `json:"is_verified"`
	RemovalRequested bool            `json:"removal_requested"`
	// PreviousStatus is written when the property enters UNAVAILABLE so the
	// restore path never has to infer it.
	PreviousStatus *PropertyStatus `json:"previous_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Versioned
}

func (p *Property) GetID() string { return p.ID.String() }

// IsPubliclyVisible reports whether the listing may appear in buyer-facing
// results. Approval alone is not enough; verification is a separate admin
// confirmation.
func (p *Property) IsPubliclyVisible() bool {
	return p.Status == StatusApproved && p.IsVerified
}

// ValidateFeatureGroups checks that the attribute groups present on the
// property match its type discriminator. Called at construction time.
func (p *Property) ValidateFeatureGroups() error {
	switch {
	case p.PropertyType.IsResidential():
		if p.Commercial != nil || p.Plot != nil {
			return fmt.Errorf("%s listing cannot carry commercial or plot features", p.PropertyType)
		}
	case p.PropertyType == PropertyTypeCommercial:
		if p.Residential != nil || p.Plot != nil {
			return fmt.Errorf("commercial listing cannot carry residential or plot features")
		}
	case p.PropertyType == PropertyTypePlot:
		if p.Residential != nil || p.Commercial != nil {
			return fmt.Errorf("plot listing cannot carry residential or commercial features")
		}
	default:
		return fmt.Errorf("unknown property type: %q", p.PropertyType)
	}
	return nil
}
