package model

// Setting is a single name/value document. The settings API reads the whole
// collection as a flat map and upserts entries individually.
type Setting struct {
	ID    string `json:"_id,omitempty" bson:"_id,omitempty"`
	Name  string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Value string `json:"value" bson:"value"`
}

// Well-known setting names used by the storefront hero section.
const (
	SettingFeaturedTripID   = "featuredProductId"
	SettingHeroMediaType    = "heroMediaType"
	SettingHeroVideoDesktop = "heroVideoDesktop"
	SettingHeroVideoMobile  = "heroVideoMobile"
	SettingHeroImage        = "heroImage"
	SettingHeroTitle        = "heroTitle"
	SettingHeroSubtitle     = "heroSubtitle"
)
