package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoCandidates signals a well-formed response that carried no generated
// text. Callers may want a softer fallback than for transport failures.
var ErrNoCandidates = errors.New("no candidates in response")

// ============================================================================
// GEMINI SERVICE - text generation over the Generative Language API
// ============================================================================

// AdviceService is the capability the advice pipeline depends on. One
// prompt in, one generated text out; any failure surfaces as an error for
// the caller to contain.
type AdviceService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiService struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewGeminiService(apiKey, apiURL string, timeout time.Duration) *GeminiService {
	return &GeminiService{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate makes exactly one call to the API and extracts the first
// candidate's text. Retry policy, if any, belongs to the caller.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	requestBody := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: prompt},
				},
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		s.apiURL+"?key="+s.apiKey,
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
