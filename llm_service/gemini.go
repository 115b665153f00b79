package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type GeminiConfig struct {
	APIURL string
	APIKey string
}

type GeminiService struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     GeminiConfig
}

func NewGeminiService(cfg GeminiConfig, logger *slog.Logger) *GeminiService {
	return &GeminiService{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		config:     cfg,
	}
}

// Generate issues a single-prompt generateContent call. Gemini has no
// separate system role here: system content is prefixed onto the last user
// message to form one prompt string.
func (s *GeminiService) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if s.config.APIKey == "" {
		return "", fmt.Errorf("Gemini API key is not configured")
	}

	prompt := LastUserContent(messages)
	if system := SystemContent(messages); system != "" {
		prompt = system + "\n\n" + prompt
	}

	url := fmt.Sprintf("%s?key=%s", s.config.APIURL, s.config.APIKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      temperature,
			"responseMimeType": "text/plain",
		},
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Gemini API returned an error status",
			slog.Int("status_code", resp.StatusCode))
		return "", fmt.Errorf("Gemini API error (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	candidates, ok := result["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini API")
	}

	content, ok := candidates[0].(map[string]interface{})["content"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("content not found in Gemini API response")
	}

	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", fmt.Errorf("parts not found in Gemini API response")
	}

	text, ok := parts[0].(map[string]interface{})["text"].(string)
	if !ok {
		return "", fmt.Errorf("text not found in Gemini API response")
	}

	return text, nil
}
