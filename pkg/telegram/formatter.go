package telegram

import (
	"fmt"
	"strings"

	"competiscope-agent/internal/agent/dto"
)

const (
	maxListedPoints          = 3
	maxListedRecommendations = 2
)

// FormatAnalysisForChat renders a competitor analysis as a multi-section
// Markdown message for chat delivery. Strengths, weaknesses and opportunities
// are truncated to their first three entries and recommendations to the first
// two so the message stays scannable on a phone.
func FormatAnalysisForChat(analysis *dto.CompetitorIntelligence) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🔍 *CompetiScope Analysis: %s*\n\n", analysis.Company))
	builder.WriteString(fmt.Sprintf("📊 *Summary:* %s\n\n", analysis.AnalysisSummary))

	writeBulletSection(&builder, "💪 *Strengths:*", analysis.Strengths, maxListedPoints)
	writeBulletSection(&builder, "⚠️ *Weaknesses:*", analysis.Weaknesses, maxListedPoints)
	writeBulletSection(&builder, "🚀 *Key Opportunities:*", analysis.Opportunities, maxListedPoints)
	writeBulletSection(&builder, "💡 *Recommendations:*", analysis.Recommendations, maxListedRecommendations)

	builder.WriteString(fmt.Sprintf("📈 *Confidence Score:* %d%%", analysis.ConfidenceScore))

	return builder.String()
}

func writeBulletSection(builder *strings.Builder, header string, items []string, max int) {
	builder.WriteString(header)
	builder.WriteString("\n")
	if len(items) > max {
		items = items[:max]
	}
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("• %s\n", item))
	}
	builder.WriteString("\n")
}
