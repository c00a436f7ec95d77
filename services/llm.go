// services/llm.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o"

	// Favour consistency over creativity for pricing output.
	completionTemperature = 0.3
	completionMaxTokens   = 4000

	maxAttempts = 3
)

// Message is a chat message with multimodal content.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one evidence fragment: text or an inline image.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	apiKey      string
	model       string
	endpoint    string
	httpClient  *http.Client
	backoffBase time.Duration
}

// NewLLMClient builds a client from OPENAI_API_KEY, with LLM_MODEL and
// LLM_ENDPOINT overrides for compatible providers.
func NewLLMClient() *LLMClient {
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = defaultModel
	}
	endpoint := os.Getenv("LLM_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &LLMClient{
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		model:       model,
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		backoffBase: 500 * time.Millisecond,
	}
}

// Complete submits the evidence fragments as a single user message and returns
// the raw response text.
func (c *LLMClient) Complete(ctx context.Context, parts []ContentPart) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: parts}},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// retryWithBackoff retries transient failures (network errors, 429, 5xx) with
// exponential backoff and jitter. Client errors are surfaced immediately.
func (c *LLMClient) retryWithBackoff(ctx context.Context, do func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase * (1 << (attempt - 1))
			backoff += time.Duration(rand.Int63n(int64(c.backoffBase)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := do()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(respBody))
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("completion request failed after %d attempts: %w", maxAttempts, lastErr)
}
