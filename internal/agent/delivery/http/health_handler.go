package http

import (
	"net/http"
	"time"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/internal/agent/service"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves the service banner and health check endpoints.
type HealthHandler struct {
	cfg             *config.Config
	analyzerService service.AnalyzerService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config, analyzerService service.AnalyzerService) *HealthHandler {
	return &HealthHandler{cfg: cfg, analyzerService: analyzerService}
}

// RegisterRoutes registers the health routes to the Echo instance.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
}

// Root godoc
// @Summary Service banner
// @Produce  json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.RootResponse{
		Message: "CompetiScope Agent is running!",
		Version: h.cfg.App.Version,
		Status:  "healthy",
		Capabilities: []string{
			"competitor_analysis",
			"market_intelligence",
			"swot_analysis",
			"telex_integration",
		},
	})
}

// Health godoc
// @Summary Health check
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now().Format(time.RFC3339),
		CacheSize:        h.analyzerService.CacheSize(),
		GeminiConfigured: h.cfg.Gemini.APIKey != "",
		Version:          h.cfg.App.Version,
	})
}
