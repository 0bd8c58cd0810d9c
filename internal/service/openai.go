package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sportsearch/internal/config"
	"sportsearch/internal/utils"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (a local Ollama server in the default configuration).
type OpenAIClient struct {
	config     *config.LLMConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("language model API is not enabled")
	}

	if req.Model == "" {
		req.Model = c.config.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("chat completion request failed",
			zap.Int("status", resp.StatusCode), zap.String("model", req.Model))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

const extractIntentSystem = `You classify user requests about sports events in Belgium. Return ONLY a JSON object:
{"intent": "events_in_cities"|"events_by_competition"|"list_competitions"|"events_near_me"|"unclear",
 "cities": [], "competitions": [], "time_phrase": "", "radius_km": null, "limit": 0, "confidence": 0-1}
Rules:
- "events_in_cities": events in specific cities (e.g. "Brussels sports events").
- "events_by_competition": events for specific leagues (e.g. "Pro League matches").
- "list_competitions": available leagues/competitions.
- "events_near_me": events near the user's location ("near me", "nearby").
- "unclear": gibberish, random text, personal messages, or anything without a clear request.
- Copy place and competition names verbatim into the slot lists; do not translate or invent them.
- Put any time expression ("this weekend", "next week") verbatim into time_phrase. Do NOT compute dates.
- Return ONLY the JSON, no explanations.`

const extractIntentSystemStrict = extractIntentSystem + `
STRICT MODE: your previous answer did not validate. Respond with exactly one minified JSON object
with the fields above and nothing else. The intent value MUST be one of the five listed labels.`

// ExtractIntent asks the model for an intent + raw slots and parses the
// structured response. Schema validation happens in the extractor.
func (c *OpenAIClient) ExtractIntent(ctx context.Context, text string, strict bool) (*IntentExtraction, error) {
	system := extractIntentSystem
	if strict {
		system = extractIntentSystemStrict
	}

	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Temperature:    c.config.Temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: "Classify this request: " + text},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in model response")
	}

	var out IntentExtraction
	if err := utils.ParseAIJSON(resp.Choices[0].Message.Content, &out); err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}
	return &out, nil
}

const resolveDatesSystem = `You normalize time expressions for sports queries in Belgium (Europe/Brussels calendar).
Given CURRENT_DATE and a phrase, return ONLY JSON:
{"status": "OK"|"UNCLEAR"|"NO_TIME", "date_from": "YYYY-MM-DD"|null, "date_to": "YYYY-MM-DD"|null, "confidence": 0-1}
Rules:
- Base ALL calculations strictly on CURRENT_DATE. ISO dates only, no times.
- "this weekend" = the weekend containing or following CURRENT_DATE; "next weekend" = the one after.
- "next week" = the following Monday through Sunday.
- For "within N weeks": date_from = CURRENT_DATE, date_to = CURRENT_DATE + N weeks.
- Vague words ("soon", "later", "sometime") are UNCLEAR with null dates.
- No time words at all is NO_TIME with null dates.`

// ResolveDates asks the model to normalize a time phrase into an ISO date
// range anchored to ref. Only phrases outside the deterministic rule table
// reach this call.
func (c *OpenAIClient) ResolveDates(ctx context.Context, phrase string, ref time.Time) (*DateRangeExtraction, error) {
	user := fmt.Sprintf("CURRENT_DATE: %s (%s)\nPHRASE: %s\nReturn ONLY JSON.",
		ref.Format("2006-01-02"), ref.Weekday(), phrase)

	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Temperature:    c.config.Temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []ChatMessage{
			{Role: "system", Content: resolveDatesSystem},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in model response")
	}

	var out DateRangeExtraction
	if err := utils.ParseAIJSON(resp.Choices[0].Message.Content, &out); err != nil {
		return nil, fmt.Errorf("date resolution: %w", err)
	}
	return &out, nil
}
