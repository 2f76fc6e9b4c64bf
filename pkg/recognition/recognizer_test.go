package recognition

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecognitionText(t *testing.T) {
	t.Run("clean JSON", func(t *testing.T) {
		result, err := parseRecognitionText(`{
			"name": "Grange",
			"winemaker": "Penfolds",
			"vintage": 2016,
			"country": "Australia",
			"region": "Barossa Valley",
			"wineType": "red",
			"alcoholContent": 14.5,
			"grapeVariety": ["Shiraz", "Cabernet Sauvignon"],
			"confidence": 0.92,
			"extractedText": "PENFOLDS GRANGE 2016"
		}`)
		require.NoError(t, err)

		assert.Equal(t, "Grange", result.Name)
		assert.Equal(t, "Penfolds", result.Winemaker)
		require.NotNil(t, result.Vintage)
		assert.Equal(t, 2016, *result.Vintage)
		assert.Equal(t, "Australia", result.Country)
		assert.Equal(t, "Barossa Valley", result.Region)
		assert.Equal(t, "red", result.WineType)
		require.NotNil(t, result.AlcoholContent)
		assert.Equal(t, 14.5, *result.AlcoholContent)
		assert.Equal(t, []string{"Shiraz", "Cabernet Sauvignon"}, result.GrapeVariety)
		assert.Equal(t, 0.92, result.Confidence)
		assert.Equal(t, "PENFOLDS GRANGE 2016", result.ExtractedText)
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		result, err := parseRecognitionText("```json\n{\"name\": \"Grange\", \"winemaker\": \"Penfolds\", \"confidence\": 0.8}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Grange", result.Name)
		assert.Equal(t, 0.8, result.Confidence)
	})

	t.Run("JSON wrapped in prose", func(t *testing.T) {
		result, err := parseRecognitionText("Here is the result: {\"name\": \"Grange\", \"confidence\": 0.7}")
		require.NoError(t, err)
		assert.Equal(t, "Grange", result.Name)
		assert.Equal(t, 0.7, result.Confidence)
	})

	t.Run("null fields stay absent", func(t *testing.T) {
		result, err := parseRecognitionText(`{"name": "Grange", "winemaker": null, "vintage": null, "confidence": 0.5}`)
		require.NoError(t, err)
		assert.Equal(t, "Grange", result.Name)
		assert.Empty(t, result.Winemaker)
		assert.Nil(t, result.Vintage)
	})

	t.Run("out of range values dropped", func(t *testing.T) {
		result, err := parseRecognitionText(`{
			"name": "Grange",
			"vintage": 1750,
			"wineType": "orange",
			"alcoholContent": 80,
			"confidence": 1.4
		}`)
		require.NoError(t, err)
		assert.Nil(t, result.Vintage)
		assert.Empty(t, result.WineType)
		assert.Nil(t, result.AlcoholContent)
		assert.Equal(t, 1.0, result.Confidence)
	})

	t.Run("negative confidence clamped to zero", func(t *testing.T) {
		result, err := parseRecognitionText(`{"confidence": -0.2}`)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Confidence)
	})

	t.Run("wine type case normalized", func(t *testing.T) {
		result, err := parseRecognitionText(`{"wineType": "Red", "confidence": 0.5}`)
		require.NoError(t, err)
		assert.Equal(t, "red", result.WineType)
	})

	t.Run("malformed body errors", func(t *testing.T) {
		_, err := parseRecognitionText("not json at all")
		assert.Error(t, err)
	})

	t.Run("wrong field types error", func(t *testing.T) {
		_, err := parseRecognitionText(`{"vintage": "two thousand sixteen"}`)
		assert.Error(t, err)
	})
}

func candidateBody(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func newTestRecognizer(serverURL string) *geminiRecognizer {
	return &geminiRecognizer{
		apiKey:     "test-key",
		model:      "test-model",
		endpoint:   serverURL + "/%s:generateContent?key=%s",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGeminiRecognizerExtractWineData(t *testing.T) {
	t.Run("successful extraction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(candidateBody(`{"name": "Grange", "winemaker": "Penfolds", "confidence": 0.9}`)))
		}))
		defer server.Close()

		result := newTestRecognizer(server.URL).ExtractWineData(context.Background(), []byte("image"), "image/jpeg")

		assert.Equal(t, "Grange", result.Name)
		assert.Equal(t, "Penfolds", result.Winemaker)
		assert.Equal(t, 0.9, result.Confidence)
		assert.Empty(t, result.FailureReason)
		assert.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))
	})

	t.Run("upstream error is a recovered failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		result := newTestRecognizer(server.URL).ExtractWineData(context.Background(), []byte("image"), "image/jpeg")

		assert.Equal(t, 0.0, result.Confidence)
		assert.Empty(t, result.Name)
		assert.NotEmpty(t, result.FailureReason)
	})

	t.Run("unparseable answer is a recovered failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(candidateBody("I could not read this label, sorry!")))
		}))
		defer server.Close()

		result := newTestRecognizer(server.URL).ExtractWineData(context.Background(), []byte("image"), "image/jpeg")

		assert.Equal(t, 0.0, result.Confidence)
		assert.NotEmpty(t, result.FailureReason)
	})

	t.Run("no candidates is a recovered failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}))
		defer server.Close()

		result := newTestRecognizer(server.URL).ExtractWineData(context.Background(), []byte("image"), "image/jpeg")

		assert.Equal(t, 0.0, result.Confidence)
		assert.NotEmpty(t, result.FailureReason)
	})

	t.Run("missing credentials is a recovered failure", func(t *testing.T) {
		recognizer := &geminiRecognizer{httpClient: http.DefaultClient}
		result := recognizer.ExtractWineData(context.Background(), []byte("image"), "image/jpeg")

		assert.Equal(t, 0.0, result.Confidence)
		assert.NotEmpty(t, result.FailureReason)
	})
}
