package http

import (
	"errors"
	"net/http"

	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/internal/agent/service"
	"competiscope-agent/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyzeHandler handles HTTP requests for competitor analyses.
type AnalyzeHandler struct {
	analyzerService service.AnalyzerService
	logger          *logger.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzerService service.AnalyzerService, logger *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{analyzerService: analyzerService, logger: logger}
}

// RegisterRoutes registers the analyze routes to the Echo instance.
func (h *AnalyzeHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/analyze", h.Analyze)
}

// Analyze godoc
// @Summary Analyze a competitor
// @Description Run a competitive analysis for the given company
// @Tags analysis
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AnalysisRequest   true    "Company to analyze"
// @Success 200 {object} dto.CompetitorIntelligence
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analyze [post]
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	var req dto.AnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Company name is required"})
	}

	h.logger.Info("Analyzing competitor", logger.StringField("company", req.Company))

	result, err := h.analyzerService.GetComprehensiveAnalysis(c.Request().Context(), req.Company, req.Market, req.FocusAreas)
	if err != nil {
		if errors.Is(err, service.ErrCompanyRequired) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Company name is required"})
		}
		h.logger.Error("Analysis failed", logger.StringField("company", req.Company), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Analysis failed"})
	}

	return c.JSON(http.StatusOK, result)
}
