package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"competiscope-agent/internal/agent/dto"
)

// BuildCompetitiveAnalysisPrompt builds the instruction prompt for a
// competitive analysis of the collected company data.
func BuildCompetitiveAnalysisPrompt(data *dto.CollectedData, focusAreas []string) string {
	companyData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		companyData = []byte(fmt.Sprintf(`{"company": %q}`, data.Request.Company))
	}

	focus := "comprehensive analysis"
	if len(focusAreas) > 0 {
		focus = strings.Join(focusAreas, ", ")
	}

	promptTemplate := `You are CompetiScope, an expert competitive intelligence analyst. Analyze the following company data and provide comprehensive competitive intelligence.

Company Data:
%s

Focus Areas: %s

Provide analysis in the following JSON format:
{
  "analysis_summary": "2-3 sentence executive summary of key competitive insights",
  "strengths": ["strength1", "strength2", "strength3"],
  "weaknesses": ["weakness1", "weakness2", "weakness3"],
  "opportunities": ["opportunity1", "opportunity2", "opportunity3"],
  "threats": ["threat1", "threat2", "threat3"],
  "market_position": "Analysis of current market positioning and competitive stance",
  "recommendations": ["actionable recommendation 1", "actionable recommendation 2", "actionable recommendation 3"],
  "confidence_score": 85
}

Be specific, actionable, and business-focused. Base insights on the provided data but also use your knowledge about the industry and market dynamics.`

	return fmt.Sprintf(promptTemplate, string(companyData), focus)
}
