package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"wami-backend/domain"
)

// Recognizer turns a wine label image into structured wine data. It never
// returns an error: every failure mode collapses into a zero-confidence
// RecognitionResult carrying the failure reason.
type Recognizer interface {
	ExtractWineData(ctx context.Context, image []byte, mimeType string) domain.RecognitionResult
}

const extractionPrompt = "Analyze this wine label image and respond ONLY with a valid JSON object " +
	"containing exactly these fields: 'name' (string), 'winemaker' (string), 'vintage' (number), " +
	"'country' (string), 'region' (string), 'wineType' (one of: red, white, rosé, sparkling, " +
	"fortified, dessert), 'alcoholContent' (number between 0 and 50), 'grapeVariety' (array of " +
	"strings), 'confidence' (number between 0 and 1), 'extractedText' (string containing all text " +
	"visible on the label). Use null for any field not clearly visible on the label; do not guess. " +
	"Do not include any explanations, markdown formatting, or extra text."

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

type geminiRecognizer struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewGeminiRecognizer builds the production recognizer. Credentials are
// passed in explicitly so the pipeline stays testable with substitutes.
func NewGeminiRecognizer(apiKey, model string) Recognizer {
	return &geminiRecognizer{
		apiKey:     apiKey,
		model:      model,
		endpoint:   geminiEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *geminiRecognizer) ExtractWineData(ctx context.Context, image []byte, mimeType string) domain.RecognitionResult {
	startTime := time.Now()

	if g.apiKey == "" || g.model == "" {
		return failedResult("recognizer not configured", startTime)
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"text": extractionPrompt,
					},
					{
						"inline_data": map[string]interface{}{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.1,
			"topP":        0.8,
			"topK":        40,
		},
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return failedResult(fmt.Sprintf("failed to encode request: %v", err), startTime)
	}

	url := fmt.Sprintf(g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestJSON))
	if err != nil {
		return failedResult(fmt.Sprintf("failed to create request: %v", err), startTime)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return failedResult(fmt.Sprintf("recognition request failed: %v", err), startTime)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return failedResult(fmt.Sprintf("recognition API error: %s - %s", resp.Status, string(bodyBytes)), startTime)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return failedResult(fmt.Sprintf("failed to decode response: %v", err), startTime)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return failedResult("recognition returned no candidates", startTime)
	}

	result, err := parseRecognitionText(geminiResp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return failedResult(fmt.Sprintf("failed to parse recognition response: %v", err), startTime)
	}

	result.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return result
}

func failedResult(reason string, startTime time.Time) domain.RecognitionResult {
	return domain.RecognitionResult{
		Confidence:       0,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		FailureReason:    reason,
	}
}

var jsonPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseRecognitionText strips incidental formatting wrappers around the JSON
// body, parses it strictly and range-validates every field. Out-of-range
// values are dropped rather than kept malformed.
func parseRecognitionText(responseText string) (domain.RecognitionResult, error) {
	if matches := jsonPattern.FindString(responseText); matches != "" {
		responseText = matches
	}

	responseText = strings.TrimSpace(responseText)
	if strings.HasPrefix(responseText, "```json") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
	} else if strings.HasPrefix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
	}
	responseText = strings.TrimSpace(responseText)

	var extraction struct {
		Name           *string   `json:"name"`
		Winemaker      *string   `json:"winemaker"`
		Vintage        *int      `json:"vintage"`
		Country        *string   `json:"country"`
		Region         *string   `json:"region"`
		WineType       *string   `json:"wineType"`
		AlcoholContent *float64  `json:"alcoholContent"`
		GrapeVariety   []string  `json:"grapeVariety"`
		Confidence     *float64  `json:"confidence"`
		ExtractedText  *string   `json:"extractedText"`
	}

	if err := json.Unmarshal([]byte(responseText), &extraction); err != nil {
		return domain.RecognitionResult{}, err
	}

	result := domain.RecognitionResult{
		Name:         stringOrEmpty(extraction.Name),
		Winemaker:    stringOrEmpty(extraction.Winemaker),
		Country:      stringOrEmpty(extraction.Country),
		Region:       stringOrEmpty(extraction.Region),
		GrapeVariety: extraction.GrapeVariety,
	}

	if extraction.Vintage != nil {
		vintage := *extraction.Vintage
		if vintage >= 1800 && vintage <= time.Now().Year()+2 {
			result.Vintage = &vintage
		}
	}

	if extraction.WineType != nil && domain.IsValidWineType(strings.ToLower(*extraction.WineType)) {
		result.WineType = strings.ToLower(*extraction.WineType)
	}

	if extraction.AlcoholContent != nil {
		abv := *extraction.AlcoholContent
		if abv >= 0 && abv <= 50 {
			result.AlcoholContent = &abv
		}
	}

	if extraction.Confidence != nil {
		confidence := *extraction.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		result.Confidence = confidence
	}

	if extraction.ExtractedText != nil {
		result.ExtractedText = *extraction.ExtractedText
	}

	return result, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
