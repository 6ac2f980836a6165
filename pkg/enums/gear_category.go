package enums

import "fmt"

// GearCategory is the closed set of equipment categories.
type GearCategory string

const (
	GearCategoryCamera      GearCategory = "Camera"
	GearCategoryLens        GearCategory = "Lens"
	GearCategoryAudio       GearCategory = "Audio"
	GearCategoryTripod      GearCategory = "Tripod"
	GearCategoryLight       GearCategory = "Light"
	GearCategoryGrip        GearCategory = "Grip"
	GearCategoryPower       GearCategory = "Power"
	GearCategoryMedia       GearCategory = "Media"
	GearCategoryAccessories GearCategory = "Accessories"
	GearCategoryOther       GearCategory = "Other"
)

var validGearCategories = []GearCategory{
	GearCategoryCamera,
	GearCategoryLens,
	GearCategoryAudio,
	GearCategoryTripod,
	GearCategoryLight,
	GearCategoryGrip,
	GearCategoryPower,
	GearCategoryMedia,
	GearCategoryAccessories,
	GearCategoryOther,
}

// String implements fmt.Stringer.
func (c GearCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known GearCategory.
func (c GearCategory) IsValid() bool {
	for _, candidate := range validGearCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseGearCategory converts raw input into a GearCategory.
func ParseGearCategory(value string) (GearCategory, error) {
	for _, candidate := range validGearCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear category %q", value)
}

// GearCategories returns the full category list in display order.
func GearCategories() []GearCategory {
	out := make([]GearCategory, len(validGearCategories))
	copy(out, validGearCategories)
	return out
}
