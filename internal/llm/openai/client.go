package openai

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

	"github.com/fikir/freetrack/internal/llm"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (c *Client) Endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if requiresAPIKey(c.cfg.BaseURL) && strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("%w: missing API key for %s", llm.ErrUnavailable, c.cfg.BaseURL)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}

	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	endpoint := c.Endpoint() + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if apiKey := strings.TrimSpace(c.cfg.APIKey); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Error("openai chat completion failed", "status", res.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return "", fmt.Errorf("openai completion failed with status %d", res.StatusCode)
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai response returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func requiresAPIKey(baseURL string) bool {
	// Heuristic: localhost/ollama usually don't need keys
	lower := strings.ToLower(baseURL)
	if strings.Contains(lower, "localhost") || strings.Contains(lower, "127.0.0.1") || strings.Contains(lower, "ollama") {
		return false
	}
	return true
}
