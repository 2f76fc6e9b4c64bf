package recognition

import (
	"fmt"
	"strings"
	"unicode"

	"wami-backend/domain"
)

const (
	// Enrichment without a name or winemaker cannot add information; the
	// result gets this fixed floor instead of a blend with the input.
	unidentifiedConfidence = 0.3
	// Successful enrichment nudges confidence up to reflect the added
	// context, capped at 1.0.
	enrichmentBonus = 0.1

	unidentifiedDescription = "A wine awaiting identification. Complete the details to finish the record."
)

// EnrichWineData composes a human-readable description from the recognized
// fields. Pure function; absent optional fields are a normal case, not an
// error.
func EnrichWineData(result domain.RecognitionResult) domain.EnrichedWineData {
	if result.Name == "" || result.Winemaker == "" {
		return domain.EnrichedWineData{
			Description: unidentifiedDescription,
			Confidence:  unidentifiedConfidence,
		}
	}

	label := "Wine"
	if result.WineType != "" {
		label = capitalize(result.WineType) + " wine"
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" by ")
	b.WriteString(result.Winemaker)

	if result.Region != "" {
		b.WriteString(" from ")
		b.WriteString(result.Region)
	}
	if result.Country != "" {
		b.WriteString(", ")
		b.WriteString(result.Country)
	}
	if result.Vintage != nil {
		b.WriteString(fmt.Sprintf(", %d vintage", *result.Vintage))
	}
	b.WriteString(".")

	confidence := result.Confidence + enrichmentBonus
	if confidence > 1.0 {
		confidence = 1.0
	}

	return domain.EnrichedWineData{
		Description: b.String(),
		Confidence:  confidence,
	}
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
