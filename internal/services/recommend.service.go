package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"devmon/internal/models"
)

const (
	// generateBaseURL is the Gemini generateContent API root.
	generateBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// aiRequestTimeout is the per-request timeout for generation calls.
	aiRequestTimeout = 60 * time.Second

	aiRetryMaxRetries = 3
	aiRetryBaseDelay  = 2 * time.Second

	promptInstruction = `Answer the question as detailed as possible from the provided context. Make sure to provide all the details.
If the answer is not in the provided context, just say, "Answer is not available in the context." Don't provide a wrong answer.`

	promptQuestion = "Based on the above system information, provide at least five detailed and actionable recommendations to optimize the developer's environment for better efficiency and performance."

	noCandidatesMessage = "No candidates returned from Gemini AI."
	noPartsMessage      = "No readable response generated from Gemini AI."
)

// RecommendationService asks the Gemini API for environment optimization
// advice based on a metrics snapshot. The call is an opaque request/response;
// no state is kept between calls.
type RecommendationService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var recommendationService *RecommendationService

// InitRecommendationService configures the Gemini client with retry-aware
// transport (429/503 backoff).
func InitRecommendationService(apiKey, model string, logger *slog.Logger) *RecommendationService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	transport := &RetryTransport{
		Base:       http.DefaultTransport,
		MaxRetries: aiRetryMaxRetries,
		BaseDelay:  aiRetryBaseDelay,
		Logger:     logger,
	}

	recommendationService = &RecommendationService{
		apiKey:  apiKey,
		model:   model,
		baseURL: generateBaseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   aiRequestTimeout,
		},
		logger: logger,
	}
	return recommendationService
}

// GetRecommendationService returns the initialized recommendation service.
func GetRecommendationService() *RecommendationService {
	return recommendationService
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

// generateResponse carries the candidate texts out of the API reply.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Recommend builds a prompt from the snapshot and returns the model's
// markdown recommendation list.
func (r *RecommendationService) Recommend(ctx context.Context, snapshot *models.Snapshot) (*models.Recommendation, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found: set the GEMINI_API_KEY environment variable")
	}

	prompt, err := buildPrompt(snapshot)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", r.baseURL, r.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", r.apiKey)

	r.logger.Debug("[AI] requesting recommendations", "model", r.model)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generation request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	return &models.Recommendation{
		Markdown:    candidateText(parsed),
		Model:       r.model,
		GeneratedAt: time.Now(),
	}, nil
}

// candidateText joins the text parts of the first candidate. Empty
// candidate or part lists map to fixed fallback strings rather than errors,
// since the HTTP call itself succeeded.
func candidateText(parsed generateResponse) string {
	if len(parsed.Candidates) == 0 {
		return noCandidatesMessage
	}

	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return noPartsMessage
	}

	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, " ")
}

// buildPrompt embeds the JSON-encoded snapshot as context for the fixed
// optimization question.
func buildPrompt(snapshot *models.Snapshot) (string, error) {
	context, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot for prompt: %w", err)
	}

	return fmt.Sprintf(`%s

Context: %s

Question: %s

Answer (Use markdown formatting for numbering and bullet points):`,
		promptInstruction, context, promptQuestion), nil
}
