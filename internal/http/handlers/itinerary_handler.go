// README: Itinerary handlers (status line and POST /generate-itinerary).
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderplan/internal/modules/itinerary"
)

// StatusText is the body of GET /.
const StatusText = "Backend running with Gemini Flash 🚀"

// ItineraryGenerator is the part of the itinerary service the handler needs.
type ItineraryGenerator interface {
	Generate(ctx context.Context, req itinerary.Request) (*itinerary.Result, error)
}

type ItineraryHandler struct {
	svc ItineraryGenerator
}

func NewItineraryHandler(svc ItineraryGenerator) *ItineraryHandler {
	return &ItineraryHandler{svc: svc}
}

// Status handles GET /.
func (h *ItineraryHandler) Status(c *gin.Context) {
	c.String(http.StatusOK, StatusText)
}

// Generate handles POST /generate-itinerary. Fields are passed through unvalidated;
// an empty body behaves like an object with every field missing.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req itinerary.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		writeGenerationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
