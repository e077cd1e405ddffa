package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Outcome labels used in logs and generation events.
const (
	OutcomeOK             = "ok"
	OutcomeTransport      = "transport_error"
	OutcomeUpstreamStatus = "upstream_error"
	OutcomeUpstreamAPI    = "upstream_api_error"
	OutcomeEmpty          = "empty_response"
	OutcomeUnknown        = "error"
)

// TransportError means the upstream could not be reached or its reply could not be read.
type TransportError struct {
	Err error
}

func newTransportError(err error) *TransportError {
	// *url.Error repeats the request URL, which carries the API key.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &TransportError{Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gemini transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError means the upstream answered with a non-success HTTP status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini returned status %d", e.Status)
}

// UpstreamAPIError means a success status whose body holds an error envelope.
type UpstreamAPIError struct {
	Payload json.RawMessage
}

func (e *UpstreamAPIError) Error() string {
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Payload, &env) == nil && env.Message != "" {
		return "gemini api error: " + env.Message
	}
	return "gemini api error"
}

// EmptyResponseError means the reply had no text at candidates[0].content.parts[0].text.
// Payload is the full upstream reply.
type EmptyResponseError struct {
	Payload json.RawMessage
}

func (e *EmptyResponseError) Error() string {
	return "gemini returned no candidate text"
}

// Outcome classifies err into one of the Outcome* labels.
func Outcome(err error) string {
	var (
		transport *TransportError
		status    *UpstreamError
		api       *UpstreamAPIError
		empty     *EmptyResponseError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &transport):
		return OutcomeTransport
	case errors.As(err, &status):
		return OutcomeUpstreamStatus
	case errors.As(err, &api):
		return OutcomeUpstreamAPI
	case errors.As(err, &empty):
		return OutcomeEmpty
	default:
		return OutcomeUnknown
	}
}

// UpstreamStatus returns the HTTP status carried by an UpstreamError, or 0.
func UpstreamStatus(err error) int {
	var status *UpstreamError
	if errors.As(err, &status) {
		return status.Status
	}
	return 0
}
