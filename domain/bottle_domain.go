package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessScanBottle    = "wine label scanned successfully"
	MessageSuccessSaveBottle    = "bottle saved to collection"
	MessageSuccessGetCollection = "collection retrieved successfully"
	MessageSuccessGetBottle     = "bottle retrieved successfully"
	MessageSuccessUploadImage   = "bottle image uploaded successfully"

	MessageFailedScanBottle    = "failed to scan wine label"
	MessageFailedSaveBottle    = "failed to save bottle"
	MessageFailedGetCollection = "failed to retrieve collection"
	MessageFailedGetBottle     = "failed to retrieve bottle"
	MessageFailedUploadImage   = "failed to upload bottle image"

	ErrNoImageProvided    = errors.New("no image provided")
	ErrWineNotRecognized  = errors.New("could not extract wine data from image")
	ErrMissingWineFields  = errors.New("wine name and winemaker are required")
	ErrInvalidWineType    = errors.New("invalid wine type")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrBottleNotFound     = errors.New("bottle not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to bottle")
)

const (
	// Save reward values. The base is always awarded; the rest reward the
	// caller for enriching the record.
	RewardBaseSave         = 10
	RewardRating           = 5
	RewardWsetNotes        = 10
	RewardPersonalNotes    = 5
	MinPersonalNotesLength = 10

	// A scan is usable whenever confidence is nonzero; it is savable
	// without manual correction only above this threshold.
	SavableConfidence = 0.3
)

// WineTypes is the closed set of accepted wine types.
var WineTypes = []string{"red", "white", "rosé", "sparkling", "fortified", "dessert"}

func IsValidWineType(wineType string) bool {
	for _, t := range WineTypes {
		if t == wineType {
			return true
		}
	}
	return false
}

type (
	// RecognitionResult is the transient output of one recognizer call.
	// Every structured field is either validly typed or absent; Confidence
	// is always present, 0 denoting total failure.
	RecognitionResult struct {
		Name             string   `json:"name,omitempty"`
		Winemaker        string   `json:"winemaker,omitempty"`
		Vintage          *int     `json:"vintage,omitempty"`
		Country          string   `json:"country,omitempty"`
		Region           string   `json:"region,omitempty"`
		WineType         string   `json:"wine_type,omitempty"`
		AlcoholContent   *float64 `json:"alcohol_content,omitempty"`
		GrapeVariety     []string `json:"grape_variety,omitempty"`
		Confidence       float64  `json:"confidence"`
		ProcessingTimeMs int64    `json:"processing_time_ms"`
		ExtractedText    string   `json:"extracted_text,omitempty"`
		FailureReason    string   `json:"failure_reason,omitempty"`
	}

	// EnrichedWineData is the enrichment step's output: a composed
	// description and a possibly nudged-up confidence.
	EnrichedWineData struct {
		Description string  `json:"description"`
		Confidence  float64 `json:"confidence"`
	}

	ScannedWineData struct {
		RecognitionResult
		Description string `json:"description,omitempty"`
	}

	ScanBottleRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	ScanBottleResponse struct {
		WineData   ScannedWineData `json:"wine_data"`
		Confidence float64         `json:"confidence"`
		CanSave    bool            `json:"can_save"`
	}

	WineDataRequest struct {
		Name           string   `json:"name" validate:"required"`
		Winemaker      string   `json:"winemaker" validate:"required"`
		Vintage        *int     `json:"vintage" validate:"omitempty,min=1800"`
		Country        string   `json:"country"`
		Region         string   `json:"region"`
		WineType       string   `json:"wine_type"`
		AlcoholContent *float64 `json:"alcohol_content" validate:"omitempty,min=0,max=50"`
		GrapeVariety   []string `json:"grape_variety"`
		Description    string   `json:"description"`
		Confidence     float64  `json:"confidence"`
		ExtractedText  string   `json:"extracted_text"`
		ProcessingTime int64    `json:"processing_time"`
	}

	SaveBottleRequest struct {
		WineData            WineDataRequest `json:"wine_data" validate:"required"`
		ImageURL            string          `json:"image_url"`
		Rating              *int            `json:"rating" validate:"omitempty,min=1,max=5"`
		PersonalNotes       string          `json:"personal_notes"`
		AcquisitionLocation string          `json:"acquisition_location"`
		WsetNotes           map[string]any  `json:"wset_notes"`
	}

	// RewardBreakdown itemizes the coins awarded by one save. Total always
	// equals the sum of the parts.
	RewardBreakdown struct {
		Base          int `json:"base"`
		Rating        int `json:"rating"`
		WsetNotes     int `json:"wset_notes"`
		PersonalNotes int `json:"personal_notes"`
		Total         int `json:"total"`
	}

	BottleResponse struct {
		ID                  string         `json:"id"`
		Name                string         `json:"name"`
		Winemaker           string         `json:"winemaker"`
		Vintage             *int           `json:"vintage,omitempty"`
		Country             string         `json:"country,omitempty"`
		Region              string         `json:"region,omitempty"`
		WineType            string         `json:"wine_type"`
		AlcoholContent      *float64       `json:"alcohol_content,omitempty"`
		GrapeVariety        []string       `json:"grape_variety,omitempty"`
		Description         string         `json:"description,omitempty"`
		ImageURL            string         `json:"image_url,omitempty"`
		AIConfidence        float64        `json:"ai_confidence"`
		AIExtractedText     string         `json:"ai_extracted_text,omitempty"`
		AIProcessingTime    int64          `json:"ai_processing_time,omitempty"`
		Rating              *int           `json:"rating,omitempty"`
		PersonalNotes       string         `json:"personal_notes,omitempty"`
		AcquisitionDate     time.Time      `json:"acquisition_date"`
		AcquisitionLocation string         `json:"acquisition_location,omitempty"`
		IsPublic            bool           `json:"is_public"`
		WsetNotes           map[string]any `json:"wset_notes,omitempty"`
		CoinsEarned         int            `json:"coins_earned"`
		CreatedAt           time.Time      `json:"created_at"`
	}

	SaveBottleResponse struct {
		Bottle      BottleResponse  `json:"bottle"`
		CoinsEarned int             `json:"coins_earned"`
		Breakdown   RewardBreakdown `json:"breakdown"`
	}

	UploadBottleImageRequest struct {
		BottleID string                `json:"bottle_id" form:"bottle_id" validate:"required,uuid"`
		Image    *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}
)
