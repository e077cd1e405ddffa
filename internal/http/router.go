// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"wanderplan/internal/http/handlers"
	"wanderplan/internal/http/middleware"
	"wanderplan/internal/platform/logger"
)

type RouterDeps struct {
	Itinerary    handlers.ItineraryGenerator
	Logger       *logger.Logger
	AllowOrigins []string
	// ServiceName is the otelgin server name; Tracing enables the span middleware.
	ServiceName string
	Tracing     bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	if deps.Tracing {
		r.Use(otelgin.Middleware(deps.ServiceName))
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.CORS(deps.AllowOrigins),
	)

	itineraryHandler := handlers.NewItineraryHandler(deps.Itinerary)
	r.GET("/", itineraryHandler.Status)
	r.POST("/generate-itinerary", itineraryHandler.Generate)

	return r
}
