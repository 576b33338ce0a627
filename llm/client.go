// Package llm talks to an OpenAI-compatible chat-completions provider and
// drives length-constrained copy generation with bounded retries.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
)

// Client is a lightweight OpenAI-compatible chat client over net/http.
// Both supported generation providers expose this wire shape, which is why
// they are interchangeable.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a chat client from config. Pass nil to use a default
// http.Client with the configured timeout.
func NewClient(cfg config.GenerationConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// CompletionRequest is one chat-completion call.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion is the provider's answer plus its token accounting.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// chatRequest is the chat completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse covers the known response shapes: the standard choices list
// and a couple of legacy variants some compatible providers still emit.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Output string `json:"output"`
	Usage  struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// chatErrorResponse captures an API error from the provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends one chat-completion request and returns the generated text
// with usage. All failure modes come back as PipelineErrors.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	body := chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInternal, "marshal chat request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInternal, "build chat request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.NewPipelineError(models.ErrCodeTimeout, "LLM request deadline exceeded", err)
		}
		return nil, models.NewPipelineError(models.ErrCodeLLMFailure, "LLM request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeLLMFailure, "read LLM response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyLLMError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, models.NewPipelineError(models.ErrCodeLLMFailure, "parse LLM response", err)
	}

	text := extractText(&chatResp, respBody)
	if text == "" {
		return nil, models.NewPipelineError(models.ErrCodeLLMFailure, "LLM returned no text", nil)
	}

	return &Completion{
		Text:             text,
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
		TotalTokens:      chatResp.Usage.TotalTokens,
	}, nil
}

// extractText resolves the generated text across the known response shapes,
// in order of likelihood; as a last resort it deep-searches the raw payload
// for any non-empty string leaf under a content-like key.
func extractText(resp *chatResponse, raw []byte) string {
	if len(resp.Choices) > 0 {
		if t := strings.TrimSpace(resp.Choices[0].Message.Content); t != "" {
			return t
		}
		if t := strings.TrimSpace(resp.Choices[0].Text); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(resp.Output); t != "" {
		return t
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return ""
	}
	return deepFindString(generic)
}

// contentKeys are the JSON keys a generated-text leaf may hide under.
var contentKeys = map[string]bool{"content": true, "text": true, "output": true, "completion": true}

// deepFindString walks a decoded JSON tree for a non-empty string under a
// content-like key. Depth-first; first hit wins.
func deepFindString(v any) string {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if s, ok := child.(string); ok && contentKeys[k] && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		for _, child := range node {
			if s := deepFindString(child); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range node {
			if s := deepFindString(child); s != "" {
				return s
			}
		}
	}
	return ""
}

// classifyLLMError maps HTTP status codes to pipeline error codes.
func classifyLLMError(statusCode int, body []byte) *models.PipelineError {
	var errResp chatErrorResponse
	msg := "LLM API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewPipelineError(models.ErrCodeLLMAuthFailure, msg, nil)
	case statusCode == http.StatusTooManyRequests:
		return models.NewPipelineError(models.ErrCodeLLMRateLimited, msg, nil)
	default:
		return models.NewPipelineError(models.ErrCodeLLMFailure, fmt.Sprintf("LLM API returned %d: %s", statusCode, msg), nil)
	}
}
