// Package model defines the data types shared across the enrichment pipeline.
package model

// Field keys used by SourceResult partials and the merge policy. Every key
// maps onto exactly one Facility field.
const (
	FieldName               = "name"
	FieldAddress            = "address"
	FieldFormattedAddress   = "formatted_address"
	FieldVicinity           = "vicinity"
	FieldLatitude           = "latitude"
	FieldLongitude          = "longitude"
	FieldPhone              = "phone"
	FieldInternationalPhone = "international_phone"
	FieldWebsite            = "website"
	FieldEmail              = "email"
	FieldWhatsApp           = "whatsapp"
	FieldInstagram          = "instagram"
	FieldFacebook           = "facebook"
	FieldTwitter            = "twitter"
	FieldLinkedIn           = "linkedin"
	FieldYouTube            = "youtube"
	FieldRating             = "rating"
	FieldUserRatingsTotal   = "user_ratings_total"
	FieldPriceLevel         = "price_level"
	FieldBusinessStatus     = "business_status"
	FieldTypes              = "types"
	FieldHours              = "hours"
	FieldDescription        = "description"
	FieldEstablishedYear    = "established_year"
)

// Facility is one business location moving through the pipeline. String
// fields default to empty, never nil, so merge logic can test emptiness
// uniformly. The orchestrator mutates a facility in place during enrichment
// and never touches it after the outcome is returned.
type Facility struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`

	Address          string  `json:"address,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Vicinity         string  `json:"vicinity,omitempty"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`

	Phone              string `json:"phone,omitempty"`
	InternationalPhone string `json:"international_phone,omitempty"`
	Website            string `json:"website,omitempty"`
	Email              string `json:"email,omitempty"`
	WhatsApp           string `json:"whatsapp,omitempty"`
	Instagram          string `json:"instagram,omitempty"`
	Facebook           string `json:"facebook,omitempty"`
	Twitter            string `json:"twitter,omitempty"`
	LinkedIn           string `json:"linkedin,omitempty"`
	YouTube            string `json:"youtube,omitempty"`

	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       int      `json:"price_level,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
	Types            []string `json:"types,omitempty"`
	Hours            string   `json:"hours,omitempty"`
	Description      string   `json:"description,omitempty"`
	EstablishedYear  string   `json:"established_year,omitempty"`
}

// Field returns the facility value for a field key, or nil for an unknown key.
func (f *Facility) Field(key string) any {
	switch key {
	case FieldName:
		return f.Name
	case FieldAddress:
		return f.Address
	case FieldFormattedAddress:
		return f.FormattedAddress
	case FieldVicinity:
		return f.Vicinity
	case FieldLatitude:
		return f.Latitude
	case FieldLongitude:
		return f.Longitude
	case FieldPhone:
		return f.Phone
	case FieldInternationalPhone:
		return f.InternationalPhone
	case FieldWebsite:
		return f.Website
	case FieldEmail:
		return f.Email
	case FieldWhatsApp:
		return f.WhatsApp
	case FieldInstagram:
		return f.Instagram
	case FieldFacebook:
		return f.Facebook
	case FieldTwitter:
		return f.Twitter
	case FieldLinkedIn:
		return f.LinkedIn
	case FieldYouTube:
		return f.YouTube
	case FieldRating:
		return f.Rating
	case FieldUserRatingsTotal:
		return f.UserRatingsTotal
	case FieldPriceLevel:
		return f.PriceLevel
	case FieldBusinessStatus:
		return f.BusinessStatus
	case FieldTypes:
		return f.Types
	case FieldHours:
		return f.Hours
	case FieldDescription:
		return f.Description
	case FieldEstablishedYear:
		return f.EstablishedYear
	default:
		return nil
	}
}

// SetField assigns a value to the facility field named by key. Values of the
// wrong dynamic type are ignored, as are unknown keys.
func (f *Facility) SetField(key string, value any) {
	switch key {
	case FieldName:
		setString(&f.Name, value)
	case FieldAddress:
		setString(&f.Address, value)
	case FieldFormattedAddress:
		setString(&f.FormattedAddress, value)
	case FieldVicinity:
		setString(&f.Vicinity, value)
	case FieldLatitude:
		setFloat(&f.Latitude, value)
	case FieldLongitude:
		setFloat(&f.Longitude, value)
	case FieldPhone:
		setString(&f.Phone, value)
	case FieldInternationalPhone:
		setString(&f.InternationalPhone, value)
	case FieldWebsite:
		setString(&f.Website, value)
	case FieldEmail:
		setString(&f.Email, value)
	case FieldWhatsApp:
		setString(&f.WhatsApp, value)
	case FieldInstagram:
		setString(&f.Instagram, value)
	case FieldFacebook:
		setString(&f.Facebook, value)
	case FieldTwitter:
		setString(&f.Twitter, value)
	case FieldLinkedIn:
		setString(&f.LinkedIn, value)
	case FieldYouTube:
		setString(&f.YouTube, value)
	case FieldRating:
		setFloat(&f.Rating, value)
	case FieldUserRatingsTotal:
		setInt(&f.UserRatingsTotal, value)
	case FieldPriceLevel:
		setInt(&f.PriceLevel, value)
	case FieldBusinessStatus:
		setString(&f.BusinessStatus, value)
	case FieldTypes:
		if v, ok := value.([]string); ok {
			f.Types = v
		}
	case FieldHours:
		setString(&f.Hours, value)
	case FieldDescription:
		setString(&f.Description, value)
	case FieldEstablishedYear:
		setString(&f.EstablishedYear, value)
	}
}

func setString(dst *string, value any) {
	if v, ok := value.(string); ok {
		*dst = v
	}
}

func setFloat(dst *float64, value any) {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	}
}

func setInt(dst *int, value any) {
	switch v := value.(type) {
	case int:
		*dst = v
	case float64:
		*dst = int(v)
	}
}

// IsEmptyValue reports whether a partial-field value carries no information
// and so should lose to any populated value during a merge.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// SourceResult is the partial answer one source produced for one facility.
// Fields holds only the keys the source actually found. Immutable once
// returned by an adapter.
type SourceResult struct {
	SourceName string         `json:"source_name"`
	Fields     map[string]any `json:"fields"`
	Weight     float64        `json:"confidence_weight"`
}

// Empty reports whether the result carries no usable fields.
func (r *SourceResult) Empty() bool {
	if r == nil {
		return true
	}
	for _, v := range r.Fields {
		if !IsEmptyValue(v) {
			return false
		}
	}
	return true
}

// QualityTier buckets an enriched facility by field coverage.
type QualityTier string

const (
	TierExcellent QualityTier = "excellent"
	TierGood      QualityTier = "good"
	TierFair      QualityTier = "fair"
	TierPoor      QualityTier = "poor"
)

// EnrichmentOutcome is the per-facility result of an orchestration run.
type EnrichmentOutcome struct {
	Facility        Facility    `json:"facility"`
	SourcesUsed     []string    `json:"sources_used"`
	ConfidenceScore float64     `json:"confidence_score"`
	QualityTier     QualityTier `json:"quality_tier"`
}
