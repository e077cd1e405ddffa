package ai

import (
	"bytes"
	"encoding/json"
)

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse holds only what the client reads from a generateContent reply.
// Every level is kept raw: a level that is missing or has an unexpected type
// means "no text", never a decode failure.
type generateResponse struct {
	Error json.RawMessage
	text  string
	ok    bool
}

// parseGenerateResponse reads a reply body that is already known to be valid JSON.
func parseGenerateResponse(body []byte) generateResponse {
	r := generateResponse{Error: objectField(body, "error")}

	cand := firstElem(objectField(body, "candidates"))
	parts := objectField(objectField(cand, "content"), "parts")
	raw := objectField(firstElem(parts), "text")
	if raw == nil {
		return r
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return r
	}
	r.text, r.ok = s, true
	return r
}

// firstText returns candidates[0].content.parts[0].text when it is a non-empty string.
func (r *generateResponse) firstText() (string, bool) {
	return r.text, r.ok
}

// hasError reports whether the reply carries a truthy error envelope.
func (r *generateResponse) hasError() bool {
	switch string(bytes.TrimSpace(r.Error)) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}

// objectField returns raw[key] when raw is a JSON object, else nil.
func objectField(raw json.RawMessage, key string) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj[key]
}

// firstElem returns raw[0] when raw is a non-empty JSON array, else nil.
func firstElem(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return nil
	}
	return arr[0]
}
