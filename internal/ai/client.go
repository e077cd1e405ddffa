package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"wanderplan/internal/platform/logger"
)

// GeminiConfig selects the upstream model and credentials.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiClient calls the generateContent REST endpoint directly.
// It sets no timeout of its own; callers bound the call through ctx.
type GeminiClient struct {
	endpoint string
	model    string
	http     *http.Client
	log      *logger.Logger
}

// NewGeminiClient builds a REST client. httpClient may be nil.
func NewGeminiClient(cfg GeminiConfig, httpClient *http.Client, log *logger.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: missing api key")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: missing model")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gemini: invalid base url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logger.Nop()
	}

	q := url.Values{}
	q.Set("key", cfg.APIKey)
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s", base.String(), url.PathEscape(cfg.Model), q.Encode())

	return &GeminiClient{
		endpoint: endpoint,
		model:    cfg.Model,
		http:     httpClient,
		log:      log,
	}, nil
}

// GenerateText sends prompt as the single part of a single user message and
// returns candidates[0].content.parts[0].text.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", newTransportError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", newTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newTransportError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	c.log.Debug("gemini raw response", "model", c.model, "payload", string(body))

	if !json.Valid(body) {
		return "", newTransportError(errors.New("decode response: body is not valid JSON"))
	}
	gr := parseGenerateResponse(body)
	if gr.hasError() {
		return "", &UpstreamAPIError{Payload: gr.Error}
	}
	text, ok := gr.firstText()
	if !ok {
		return "", &EmptyResponseError{Payload: body}
	}
	return text, nil
}
