// README: Base handler utilities (JSON helpers, generation error mapping).
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderplan/internal/ai"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type upstreamDetails struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeGenerationError renders a failed generation. Every failure is a 500;
// only the message and details differ by error type.
func writeGenerationError(c *gin.Context, err error) {
	var (
		transport *ai.TransportError
		status    *ai.UpstreamError
		api       *ai.UpstreamAPIError
		empty     *ai.EmptyResponseError
	)
	switch {
	case errors.As(err, &transport):
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "Gemini request failed",
			Details: transport.Err.Error(),
		})
	case errors.As(err, &status):
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "Gemini request failed",
			Details: upstreamDetails{Status: status.Status, Body: status.Body},
		})
	case errors.As(err, &api):
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "Gemini API Error",
			Details: rawOrString(api.Payload),
		})
	case errors.As(err, &empty):
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "Empty Gemini response",
			Details: rawOrString(empty.Payload),
		})
	default:
		writeError(c, http.StatusInternalServerError, "Something went wrong")
	}
}

func rawOrString(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return b
	}
	return string(b)
}
