package http

import (
	"fmt"
	"net/http"
	"strings"

	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/internal/agent/service"
	"competiscope-agent/pkg/logger"
	"competiscope-agent/pkg/telegram"

	"github.com/labstack/echo/v4"
)

const (
	greetingMessage         = "Hi! I'm CompetiScope 🔍 I can analyze competitors for you. Try: 'analyze [company name]'"
	promptForCompanyMessage = "Please specify a company name to analyze. Example: 'analyze Apple' or 'research Tesla'"
	genericErrorMessage     = "Sorry, I encountered an error. Please try again."
)

// analyzeCommands are the recognized chat command verbs.
var analyzeCommands = []string{"analyze", "check", "research"}

func apologyMessage(company string) string {
	return fmt.Sprintf("Sorry, I couldn't analyze %s. Please try again with a different company name.", company)
}

// WebhookHandler handles inbound chat messages from the Telex webhook.
type WebhookHandler struct {
	analyzerService service.AnalyzerService
	logger          *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(analyzerService service.AnalyzerService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{analyzerService: analyzerService, logger: logger}
}

// RegisterRoutes registers the webhook routes to the Echo instance.
func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhook/telex", h.Webhook)
}

// Webhook godoc
// @Summary Telex chat webhook
// @Description Parse a free-text chat command and reply with a formatted analysis
// @Tags webhook
// @Accept  json
// @Produce  json
// @Param   message  body    dto.WebhookRequest   true    "Chat message"
// @Success 200 {object} dto.WebhookResponse
// @Router /webhook/telex [post]
func (h *WebhookHandler) Webhook(c echo.Context) error {
	var req dto.WebhookRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Webhook payload could not be parsed", logger.ErrorField(err))
		return c.JSON(http.StatusOK, dto.WebhookResponse{
			Response: genericErrorMessage,
			Error:    "invalid_payload",
		})
	}

	content := strings.TrimSpace(req.Content)
	h.logger.Info("Received Telex message", logger.StringField("content", content))

	if !hasAnalyzeCommand(content) {
		return c.JSON(http.StatusOK, dto.WebhookResponse{
			Response:  greetingMessage,
			ChannelID: req.ChannelID,
		})
	}

	parts := strings.SplitN(content, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return c.JSON(http.StatusOK, dto.WebhookResponse{
			Response:  promptForCompanyMessage,
			ChannelID: req.ChannelID,
		})
	}

	company := strings.TrimSpace(parts[1])
	analysis, err := h.analyzerService.GetComprehensiveAnalysis(c.Request().Context(), company, "", nil)
	if err != nil {
		// Chat users get an apology, never the underlying error.
		h.logger.Error("Webhook analysis failed", logger.StringField("company", company), logger.ErrorField(err))
		return c.JSON(http.StatusOK, dto.WebhookResponse{
			Response:  apologyMessage(company),
			ChannelID: req.ChannelID,
			Error:     "analysis_failed",
		})
	}

	return c.JSON(http.StatusOK, dto.WebhookResponse{
		Response:  telegram.FormatAnalysisForChat(analysis),
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
	})
}

func hasAnalyzeCommand(content string) bool {
	lower := strings.ToLower(content)
	for _, cmd := range analyzeCommands {
		if strings.HasPrefix(lower, cmd) {
			return true
		}
	}
	return false
}
