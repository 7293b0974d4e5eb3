package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

const openAIBaseURL = "https://api.openai.com/v1"

var _ domain.Categorizer = (*OpenAI)(nil)

// OpenAI categorizes markets with a chat-completion call. Responses outside
// the valid category set degrade to news with the manual-review flag, never to
// an error, so one odd completion cannot fail a batch.
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAI creates an OpenAI categorizer using the given API key and model.
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

const systemPrompt = `You are a classifier for prediction-market questions.
Reply with exactly one word from this list and nothing else:
politics, crypto, sports, business, culture, tech, news.`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Categorize sends one classification request. Transport and API errors are
// returned to the caller; an off-list label is not an error.
func (o *OpenAI) Categorize(ctx context.Context, question, description string) (domain.CategoryResult, error) {
	user := question
	if description != "" {
		user += "\n\n" + description
	}

	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   4,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: %w: %s", domain.ErrRateLimited, body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: %w: %s", domain.ErrUnauthorized, body)
	default:
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: decode response: %w", err)
	}
	if parsed.Error != nil {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return domain.CategoryResult{}, fmt.Errorf("categorize/openai: empty completion")
	}

	label := strings.ToLower(strings.TrimSpace(parsed.Choices[0].Message.Content))
	label = strings.Trim(label, ".\"'")
	if !domain.ValidCategories[label] {
		return domain.CategoryResult{Category: domain.CategoryNews, NeedsManual: true}, nil
	}
	return domain.CategoryResult{Category: label}, nil
}
