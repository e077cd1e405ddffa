package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"wanderplan/internal/platform/logger"
)

// GeminiProvider implements TextGenerator on Google's generative-ai-go SDK.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	log    *logger.Logger
}

// NewGeminiProvider initializes an SDK client for cfg.Model.
// cfg.BaseURL is ignored; the SDK talks to its own endpoint.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, log *logger.Logger) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GeminiProvider{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		name:   cfg.Model,
		log:    log,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// GenerateText sends prompt as a single user turn and returns the first part of the first candidate.
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifySDKError(err)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		payload = json.RawMessage(`{}`)
	}
	p.log.Debug("gemini raw response", "model", p.name, "payload", string(payload))

	text := firstSDKText(resp)
	if text == "" {
		return "", &EmptyResponseError{Payload: payload}
	}
	return text, nil
}

func firstSDKText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return ""
	}
	if txt, ok := cand.Content.Parts[0].(genai.Text); ok {
		return string(txt)
	}
	return ""
}

// classifySDKError maps SDK failures onto the same taxonomy the REST client uses.
func classifySDKError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		payload, mErr := json.Marshal(blocked)
		if mErr != nil {
			payload = json.RawMessage(`{}`)
		}
		return &EmptyResponseError{Payload: payload}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Body
		if body == "" {
			body = gerr.Message
		}
		return &UpstreamError{Status: gerr.Code, Body: body}
	}

	var aerr *apierror.APIError
	if errors.As(err, &aerr) && aerr.HTTPCode() > 0 {
		return &UpstreamError{Status: aerr.HTTPCode(), Body: aerr.Error()}
	}

	return &TransportError{Err: err}
}
