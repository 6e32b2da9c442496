package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIAdapter talks to any OpenAI-compatible chat completions endpoint.
// It implements ProviderAdapter over plain HTTP so that rate-limit and
// authentication signals arrive as distinguishable status codes.
type OpenAIAdapter struct {
	name    string
	client  *resty.Client
	timeout time.Duration
}

// OpenAIOption configures an OpenAIAdapter.
type OpenAIOption func(*OpenAIAdapter)

// WithHTTPClient supplies the underlying resty client. The adapter still
// applies its base URL, headers, and timeout on top of it.
func WithHTTPClient(client *resty.Client) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.client = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.timeout = d
	}
}

// NewOpenAIAdapter creates an adapter for an OpenAI-compatible endpoint.
// baseURL is the API root (e.g. "https://api.openai.com/v1").
func NewOpenAIAdapter(name, baseURL, apiKey string, opts ...OpenAIOption) (*OpenAIAdapter, error) {
	if baseURL == "" {
		return nil, &ConfigurationError{BackendError: BackendError{
			Message: "openai adapter requires a base URL",
		}}
	}
	if name == "" {
		name = "openai"
	}

	a := &OpenAIAdapter{name: name, timeout: 120 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = resty.New()
	}

	a.client.
		SetBaseURL(baseURL).
		SetTimeout(a.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0) // The loop owns retry pacing.
	if apiKey != "" {
		a.client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return a, nil
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() string { return a.name }

// Wire types for the chat completions payload.

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a blocking chat completion request.
func (a *OpenAIAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	body := chatRequest{
		Model:       req.Model,
		Messages:    translateMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var result chatResponse
	var apiErr chatError
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		if ctx.Err() != nil {
			return nil, &RequestTimeoutError{BackendError: BackendError{
				Message: "request cancelled", Cause: ctx.Err(),
			}}
		}
		return nil, &NetworkError{BackendError: BackendError{
			Message: "request to inference backend failed", Cause: err,
		}}
	}

	if resp.StatusCode() >= 400 {
		message := apiErr.Error.Message
		if message == "" {
			message = fmt.Sprintf("inference backend returned status %d", resp.StatusCode())
		}
		return nil, ErrorFromStatusCode(resp.StatusCode(), message, a.name, retryAfterFromHeader(resp))
	}

	if len(result.Choices) == 0 {
		return nil, &ProviderError{
			BackendError: BackendError{Message: "response contained no choices"},
			Provider:     a.name,
			StatusCode:   resp.StatusCode(),
			Retryable:    true,
		}
	}

	return &Response{
		ID:       result.ID,
		Model:    result.Model,
		Provider: a.name,
		Message:  Message{Role: RoleAssistant, Content: []ContentPart{TextPart(result.Choices[0].Message.Content)}},
		Usage: Usage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
			TotalTokens:  result.Usage.TotalTokens,
		},
	}, nil
}

// translateMessages converts unified messages to the chat completions shape,
// embedding images as base64 data URLs.
func translateMessages(messages []Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		cm := chatMessage{Role: string(msg.Role)}
		for _, part := range msg.Content {
			switch part.Kind {
			case ContentText:
				cm.Content = append(cm.Content, chatContent{Type: "text", Text: part.Text})
			case ContentImage:
				if part.Image == nil || len(part.Image.Data) == 0 {
					continue
				}
				url := fmt.Sprintf("data:%s;base64,%s",
					part.Image.MediaType,
					base64.StdEncoding.EncodeToString(part.Image.Data))
				cm.Content = append(cm.Content, chatContent{Type: "image_url", ImageURL: &chatImageURL{URL: url}})
			}
		}
		out = append(out, cm)
	}
	return out
}

// retryAfterFromHeader parses the Retry-After header as seconds, if present.
func retryAfterFromHeader(resp *resty.Response) *float64 {
	header := resp.Header().Get("Retry-After")
	if header == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds < 0 {
		return nil
	}
	return &seconds
}
