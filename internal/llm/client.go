package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codesolver/codesolver/internal/config"
)

// Client calls an OpenAI-compatible /v1/chat/completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient builds a client from generator config. The API key is read from
// the configured environment variable; a secrets env file, when set, is
// loaded first and fills in variables the environment does not already have.
func NewClient(cfg config.Generator) (*Client, error) {
	if cfg.SecretsEnvFile != "" {
		secrets, err := ParseEnvFile(cfg.SecretsEnvFile)
		if err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
		for k, v := range secrets {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}
	apiKey := os.Getenv(cfg.APIKeyEnv)
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 60
	}
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      apiKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}, nil
}

// Model reports the configured model name, used for pricing and run records.
func (c *Client) Model() string { return c.model }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the trajectory to the model and extracts a single code
// block from the reply.
func (c *Client) Generate(ctx context.Context, trajectory []Message) (string, Usage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", Usage{}, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    trajectory,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("calling generator: %w", err)
	}
	defer resp.Body.Close()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", Usage{}, fmt.Errorf("decoding generator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned %d", resp.StatusCode)
		if chat.Error != nil {
			msg = fmt.Sprintf("%s: %s", msg, chat.Error.Message)
		}
		return "", Usage{}, &GenerationError{Reason: msg}
	}

	usage := Usage{
		InputTokens:  chat.Usage.PromptTokens,
		OutputTokens: chat.Usage.CompletionTokens,
	}
	if len(chat.Choices) == 0 {
		return "", usage, &GenerationError{Reason: "no choices in response"}
	}
	code := ExtractCode(chat.Choices[0].Message.Content)
	if strings.TrimSpace(code) == "" {
		return "", usage, &GenerationError{Reason: "empty completion"}
	}
	return code, usage, nil
}
