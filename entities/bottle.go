package entities

import (
	"time"

	"github.com/google/uuid"
)

type Bottle struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Wine data. Name and Winemaker are always non-empty at creation.
	Name           string   `json:"name"`
	Winemaker      string   `json:"winemaker"`
	Vintage        *int     `json:"vintage,omitempty"`
	Country        string   `json:"country,omitempty"`
	Region         string   `json:"region,omitempty"`
	WineType       string   `json:"wine_type"` // red, white, rosé, sparkling, fortified, dessert
	AlcoholContent *float64 `json:"alcohol_content,omitempty"`
	GrapeVariety   string   `json:"grape_variety,omitempty" gorm:"type:text"` // JSON array of strings
	Description    string   `json:"description,omitempty" gorm:"type:text"`

	ImageURL string `json:"image_url,omitempty"`

	// Recognition provenance snapshot, immutable after creation.
	AIConfidence     float64 `json:"ai_confidence"`
	AIExtractedText  string  `json:"ai_extracted_text,omitempty" gorm:"type:text"`
	AIProcessingTime int64   `json:"ai_processing_time,omitempty"`

	// Personal data.
	Rating              *int      `json:"rating,omitempty"`
	PersonalNotes       string    `json:"personal_notes,omitempty" gorm:"type:text"`
	AcquisitionDate     time.Time `json:"acquisition_date"`
	AcquisitionLocation string    `json:"acquisition_location,omitempty"`
	IsPublic            bool      `gorm:"default:false" json:"is_public"`

	WsetNotes string `json:"wset_notes,omitempty" gorm:"type:text"` // JSON object

	// Awarded at creation, never recomputed.
	CoinsEarned int `json:"coins_earned"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
