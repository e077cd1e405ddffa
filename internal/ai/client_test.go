package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewGeminiClient(GeminiConfig{APIKey: "test-key", Model: "gemini-2.5-flash-lite", BaseURL: srv.URL + "/v1"}, srv.Client(), nil)
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	return c
}

func TestGenerateTextSendsPromptAsSingleUserPart(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Day 1: ..."}]}}]}`))
	})

	text, err := c.GenerateText(context.Background(), "plan my trip")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "Day 1: ..." {
		t.Errorf("expected exact candidate text, got %q", text)
	}
	if gotPath != "/v1/models/gemini-2.5-flash-lite:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected key query param, got %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Role != "user" ||
		len(gotBody.Contents[0].Parts) != 1 || gotBody.Contents[0].Parts[0].Text != "plan my trip" {
		t.Errorf("unexpected request body %+v", gotBody)
	}
}

func TestGenerateTextNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`quota exceeded`))
	})

	_, err := c.GenerateText(context.Background(), "p")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.Status != http.StatusTooManyRequests || upErr.Body != "quota exceeded" {
		t.Errorf("unexpected upstream error %+v", upErr)
	}
	if Outcome(err) != OutcomeUpstreamStatus || UpstreamStatus(err) != http.StatusTooManyRequests {
		t.Errorf("unexpected classification %q/%d", Outcome(err), UpstreamStatus(err))
	}
}

func TestGenerateTextEmbeddedError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := c.GenerateText(context.Background(), "p")
	var apiErr *UpstreamAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected UpstreamAPIError, got %v", err)
	}
	if !strings.Contains(string(apiErr.Payload), "API key not valid") {
		t.Errorf("expected payload to carry the error object, got %s", apiErr.Payload)
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("expected message in error string, got %q", err.Error())
	}
}

func TestGenerateTextEmptyResponse(t *testing.T) {
	bodies := map[string]string{
		"no candidates":     `{}`,
		"empty list":        `{"candidates":[]}`,
		"no content":        `{"candidates":[{"finishReason":"SAFETY"}]}`,
		"no parts":          `{"candidates":[{"content":{"parts":[]}}]}`,
		"no text":           `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`,
		"empty text":        `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
		"falsy envelope":    `{"error":null,"candidates":[]}`,
		"candidates object": `{"candidates":{}}`,
		"numeric text":      `{"candidates":[{"content":{"parts":[{"text":5}]}}]}`,
		"parts object":      `{"candidates":[{"content":{"parts":{"text":"x"}}}]}`,
		"array body":        `[]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.GenerateText(context.Background(), "p")
			var empty *EmptyResponseError
			if !errors.As(err, &empty) {
				t.Fatalf("expected EmptyResponseError, got %v", err)
			}
			if string(empty.Payload) != body {
				t.Errorf("expected payload %s, got %s", body, empty.Payload)
			}
		})
	}
}

func TestGenerateTextMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	_, err := c.GenerateText(context.Background(), "p")
	if Outcome(err) != OutcomeTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if strings.Contains(err.Error(), "struct") {
		t.Errorf("error exposes Go types: %q", err.Error())
	}
}

func TestGenerateTextTransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := NewGeminiClient(GeminiConfig{APIKey: "super-secret", Model: "m", BaseURL: base}, nil, nil)
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	_, err = c.GenerateText(context.Background(), "p")
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Errorf("transport error leaks api key: %q", err.Error())
	}
}

func TestGenerateTextHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.GenerateText(ctx, "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if Outcome(err) != OutcomeTransport {
		t.Errorf("expected transport outcome, got %q", Outcome(err))
	}
}

func TestNewGeminiClientValidation(t *testing.T) {
	cases := map[string]GeminiConfig{
		"missing key":   {Model: "m", BaseURL: "https://example.com/v1"},
		"missing model": {APIKey: "k", BaseURL: "https://example.com/v1"},
		"bad base url":  {APIKey: "k", Model: "m", BaseURL: "not a url"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewGeminiClient(cfg, nil, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
