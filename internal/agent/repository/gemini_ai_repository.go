package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/pkg/logger"
	"competiscope-agent/pkg/ratelimit"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// fallbackConfidenceScore is the confidence attached to the canned insights
// used when the model response cannot be parsed.
const fallbackConfidenceScore = 60

// geminiAIRepository is an implementation of AIRepository that uses the
// Google Gemini API.
type geminiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// GenerateInsights asks Gemini for a competitive analysis of the collected
// data. Transport and API failures are returned as errors. A response that
// cannot be parsed into the expected JSON shape is replaced with the canned
// fallback insights and is not an error.
func (r *geminiAIRepository) GenerateInsights(ctx context.Context, data *dto.CollectedData, focusAreas []string) (*dto.InsightResult, error) {
	prompt := BuildCompetitiveAnalysisPrompt(data, focusAreas)

	geminiResp, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw string
	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		raw = geminiResp.Candidates[0].Content.Parts[0].Text
	}

	insights, err := ParseInsightResponse(raw)
	if err != nil {
		r.logger.Warn("Failed to parse AI response as JSON, using fallback insights",
			logger.StringField("company", data.Request.Company), logger.ErrorField(err))
		fallback := FallbackInsights(data)
		return &dto.InsightResult{Insights: fallback, Fallback: true}, nil
	}

	return &dto.InsightResult{Insights: *insights}, nil
}

func (r *geminiAIRepository) executeGeminiAIRequest(ctx context.Context, prompt string) (*dto.GeminiAPIResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("Failed to marshal payload", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		r.logger.Error("Failed to create new http request", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Gemini API", logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		r.logger.Error("Failed to decode response body", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &geminiResp, nil
}

// ParseInsightResponse parses the model's text output into AIInsights. The
// text has any markdown code fences stripped first; if plain unmarshalling
// fails, a JSON repair pass is attempted before giving up.
func ParseInsightResponse(raw string) (*dto.AIInsights, error) {
	cleaned := cleanJSONBlock(raw)

	var insights dto.AIInsights
	if err := json.Unmarshal([]byte(cleaned), &insights); err == nil {
		return &insights, nil
	}

	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to repair model response: %w", err)
	}

	insights = dto.AIInsights{}
	if err := json.Unmarshal([]byte(repaired), &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal repaired model response: %w", err)
	}
	if isEmptyInsights(&insights) {
		// Repair of free-form prose can fabricate an empty object.
		return nil, fmt.Errorf("repaired model response carries no analysis fields")
	}
	return &insights, nil
}

// FallbackInsights is the fixed, generic analysis used when the model output
// cannot be structurally parsed.
func FallbackInsights(data *dto.CollectedData) dto.AIInsights {
	name := data.Request.Company
	if n, ok := data.BasicInfo["name"].(string); ok && n != "" {
		name = n
	}
	confidence := fallbackConfidenceScore
	return dto.AIInsights{
		AnalysisSummary: fmt.Sprintf("Basic analysis of %s based on available data.", name),
		Strengths:       []string{"Market presence", "Brand recognition", "Innovation capability"},
		Weaknesses:      []string{"Limited data available", "Market competition", "Economic sensitivity"},
		Opportunities:   []string{"Digital transformation", "Market expansion", "Strategic partnerships"},
		Threats:         []string{"Economic uncertainty", "Competitive pressure", "Regulatory changes"},
		MarketPosition:  "Competitive position requires further analysis with more comprehensive data.",
		Recommendations: []string{"Conduct deeper market research", "Monitor competitor activities", "Focus on differentiation"},
		ConfidenceScore: &confidence,
	}
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func isEmptyInsights(insights *dto.AIInsights) bool {
	return insights.AnalysisSummary == "" &&
		insights.MarketPosition == "" &&
		len(insights.Strengths) == 0 &&
		len(insights.Weaknesses) == 0 &&
		len(insights.Opportunities) == 0 &&
		len(insights.Threats) == 0 &&
		len(insights.Recommendations) == 0 &&
		insights.ConfidenceScore == nil
}
