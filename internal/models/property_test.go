package models

import "testing"

func TestParsePropertyType(t *testing.T) {
	for _, valid := range []string{"APARTMENT", "HOUSE", "VILLA", "COMMERCIAL", "PLOT"} {
		if _, err := ParsePropertyType(valid); err != nil {
			t.Errorf("unexpected error for %s: %v", valid, err)
		}
	}
	if _, err := ParsePropertyType("CASTLE"); err == nil {
		t.Error("expected error for unknown property type")
	}
}

func TestIsPubliclyVisible(t *testing.T) {
	p := &Property{Status: StatusApproved, IsVerified: true}
	if !p.IsPubliclyVisible() {
		t.Error("approved and verified listing should be visible")
	}

	p = &Property{Status: StatusApproved, IsVerified: false}
	if p.IsPubliclyVisible() {
		t.Error("unverified listing should not be visible")
	}

	for _, status := range []PropertyStatus{StatusPending, StatusRejected, StatusInfoRequested, StatusUnavailable} {
		p = &Property{Status: status, IsVerified: true}
		if p.IsPubliclyVisible() {
			t.Errorf("listing with status %s should not be visible", status)
		}
	}
}

func TestValidateFeatureGroups(t *testing.T) {
	cases := []struct {
		name    string
		p       Property
		wantErr bool
	}{
		{"apartment with residential", Property{PropertyType: PropertyTypeApartment, Residential: &ResidentialFeatures{}}, false},
		{"apartment without features", Property{PropertyType: PropertyTypeApartment}, false},
		{"apartment with plot features", Property{PropertyType: PropertyTypeApartment, Plot: &PlotFeatures{}}, true},
		{"villa with commercial features", Property{PropertyType: PropertyTypeVilla, Commercial: &CommercialFeatures{}}, true},
		{"commercial with commercial", Property{PropertyType: PropertyTypeCommercial, Commercial: &CommercialFeatures{}}, false},
		{"commercial with residential", Property{PropertyType: PropertyTypeCommercial, Residential: &ResidentialFeatures{}}, true},
		{"plot with plot", Property{PropertyType: PropertyTypePlot, Plot: &PlotFeatures{}}, false},
		{"plot with commercial", Property{PropertyType: PropertyTypePlot, Commercial: &CommercialFeatures{}}, true},
		{"unknown type", Property{PropertyType: "CASTLE"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.p.ValidateFeatureGroups()
			if c.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
