package recognition

import (
	"context"

	"wami-backend/domain"
)

type (
	RecognitionService interface {
		ScanLabel(ctx context.Context, image []byte, mimeType string) (domain.ScanBottleResponse, error)
	}

	recognitionService struct {
		recognizer Recognizer
	}
)

func NewRecognitionService(recognizer Recognizer) RecognitionService {
	return &recognitionService{recognizer: recognizer}
}

// ScanLabel runs the recognition pipeline: recognizer, then enrichment. The
// usable gate is binary on confidence == 0; any nonzero confidence proceeds
// to enrichment, with CanSave separately flagging whether the result is
// reliable enough to auto-populate a saved record. On a not-usable outcome
// the zero-confidence result is still returned as a fallback payload so the
// caller can offer manual entry. Touches no shared state.
func (s *recognitionService) ScanLabel(ctx context.Context, image []byte, mimeType string) (domain.ScanBottleResponse, error) {
	extracted := s.recognizer.ExtractWineData(ctx, image, mimeType)

	if extracted.Confidence == 0 {
		return domain.ScanBottleResponse{
			WineData: domain.ScannedWineData{RecognitionResult: extracted},
		}, domain.ErrWineNotRecognized
	}

	enriched := EnrichWineData(extracted)

	return domain.ScanBottleResponse{
		WineData: domain.ScannedWineData{
			RecognitionResult: extracted,
			Description:       enriched.Description,
		},
		Confidence: extracted.Confidence,
		CanSave:    extracted.Confidence > domain.SavableConfidence,
	}, nil
}
