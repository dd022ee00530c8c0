// Package anthropic is an HTTP client for the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/bkyoung/diffscope/internal/adapter/llm/http"
	"github.com/bkyoung/diffscope/internal/domain"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 8192
	apiVersion       = "2023-06-01"
	providerName     = "anthropic"
)

// Client calls the Anthropic Messages API with retry, typed errors,
// pricing and call logging.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retry   llmhttp.RetryConfig
	pricing llmhttp.Pricing
	logger  llmhttp.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithTimeout overrides the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg llmhttp.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger attaches a call logger.
func WithLogger(logger llmhttp.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithPricing overrides the pricing table.
func WithPricing(pricing llmhttp.Pricing) Option {
	return func(c *Client) { c.pricing = pricing }
}

// NewClient creates a Messages API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		retry:   llmhttp.DefaultRetryConfig(),
		pricing: llmhttp.NewDefaultPricing(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request is one Messages API call: a full conversation so far plus
// sampling parameters.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completion is the assistant's reply with usage and cost attached.
type Completion struct {
	Text       string
	StopReason string
	Model      string
	Usage      domain.UsageStats
}

// Complete sends the conversation and returns the assistant's reply.
// Retryable failures (rate limits, overload) are retried with backoff;
// the returned error is a *llmhttp.Error when the API rejected the call.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	if len(req.Messages) == 0 {
		return nil, llmhttp.NewInvalidRequestError(providerName, "at least one message is required")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(MessagesRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if c.logger != nil {
		chars := 0
		for _, m := range req.Messages {
			chars += len(m.Content)
		}
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Model:       req.Model,
			Timestamp:   time.Now(),
			PromptChars: chars,
			APIKey:      c.apiKey,
		})
	}

	start := time.Now()
	var respBody []byte
	var statusCode int

	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
		if reqErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: reqErr.Error(), Provider: providerName}
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", apiVersion)

		resp, callErr := c.client.Do(httpReq)
		if callErr != nil {
			return llmhttp.NewTimeoutError(providerName, callErr.Error())
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: readErr.Error(), StatusCode: resp.StatusCode, Provider: providerName}
		}
		if resp.StatusCode >= 400 {
			return errorFromResponse(resp.StatusCode, data)
		}

		respBody = data
		return nil
	}, c.retry)

	if err != nil {
		c.logError(ctx, req.Model, start, err, statusCode)
		return nil, err
	}

	var parsed MessagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("empty content in response")
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	usage := domain.UsageStats{
		InputTokens:         parsed.Usage.InputTokens,
		OutputTokens:        parsed.Usage.OutputTokens,
		CacheReadTokens:     parsed.Usage.CacheReadInputTokens,
		CacheCreationTokens: parsed.Usage.CacheCreationInputTokens,
	}
	usage.CostUSD = c.pricing.Cost(parsed.Model, usage)

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:            providerName,
			Model:               parsed.Model,
			Timestamp:           time.Now(),
			Duration:            time.Since(start),
			TokensIn:            usage.InputTokens,
			TokensOut:           usage.OutputTokens,
			CacheReadTokens:     usage.CacheReadTokens,
			CacheCreationTokens: usage.CacheCreationTokens,
			Cost:                usage.CostUSD,
			StatusCode:          statusCode,
			StopReason:          parsed.StopReason,
		})
	}

	return &Completion{
		Text:       text.String(),
		StopReason: parsed.StopReason,
		Model:      parsed.Model,
		Usage:      usage,
	}, nil
}

func (c *Client) logError(ctx context.Context, model string, start time.Time, err error, statusCode int) {
	if c.logger == nil {
		return
	}
	errLog := llmhttp.ErrorLog{
		Provider:   providerName,
		Model:      model,
		Timestamp:  time.Now(),
		Duration:   time.Since(start),
		Error:      err,
		StatusCode: statusCode,
	}
	if httpErr, ok := err.(*llmhttp.Error); ok {
		errLog.ErrorType = httpErr.Type
		errLog.Retryable = httpErr.Retryable
	}
	c.logger.LogError(ctx, errLog)
}

// errorFromResponse maps HTTP status codes to typed errors.
func errorFromResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication, Message: message, StatusCode: statusCode, Retryable: false, Provider: providerName}
	case http.StatusTooManyRequests:
		return &llmhttp.Error{Type: llmhttp.ErrTypeRateLimit, Message: message, StatusCode: statusCode, Retryable: true, Provider: providerName}
	case http.StatusBadRequest, http.StatusNotFound:
		return &llmhttp.Error{Type: llmhttp.ErrTypeInvalidRequest, Message: message, StatusCode: statusCode, Retryable: false, Provider: providerName}
	case 529: // Anthropic-specific: overloaded
		return &llmhttp.Error{Type: llmhttp.ErrTypeServiceUnavailable, Message: message, StatusCode: statusCode, Retryable: true, Provider: providerName}
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return &llmhttp.Error{Type: llmhttp.ErrTypeServiceUnavailable, Message: message, StatusCode: statusCode, Retryable: true, Provider: providerName}
	default:
		return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: message, StatusCode: statusCode, Retryable: false, Provider: providerName}
	}
}
