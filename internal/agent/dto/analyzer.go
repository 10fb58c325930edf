package dto

// AnalysisRequest is the inbound request for a competitor analysis.
type AnalysisRequest struct {
	Company    string   `json:"company" validate:"required"`
	Market     string   `json:"market,omitempty"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}

// CollectedData is the merged output of the three data collectors for one
// cache miss, together with the request that triggered it.
type CollectedData struct {
	BasicInfo  map[string]interface{}   `json:"basic_info"`
	RecentNews []map[string]interface{} `json:"recent_news"`
	MarketData map[string]interface{}   `json:"market_data"`
	Request    AnalysisRequest          `json:"analysis_request"`
}

// CompetitorIntelligence is the final analysis result returned to callers.
type CompetitorIntelligence struct {
	Company         string   `json:"company"`
	AnalysisSummary string   `json:"analysis_summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Opportunities   []string `json:"opportunities"`
	Threats         []string `json:"threats"`
	MarketPosition  string   `json:"market_position"`
	Recommendations []string `json:"recommendations"`
	ConfidenceScore int      `json:"confidence_score"`
	DataSources     []string `json:"data_sources"`
}

// AIInsights is the JSON shape the model is instructed to return.
// ConfidenceScore is a pointer so a missing field can be told apart from an
// explicit zero when defaulting downstream.
type AIInsights struct {
	AnalysisSummary string   `json:"analysis_summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Opportunities   []string `json:"opportunities"`
	Threats         []string `json:"threats"`
	MarketPosition  string   `json:"market_position"`
	Recommendations []string `json:"recommendations"`
	ConfidenceScore *int     `json:"confidence_score"`
}

// InsightResult tags whether the insights were parsed from the model output
// or substituted with the canned fallback after a parse failure.
type InsightResult struct {
	Insights AIInsights
	Fallback bool
}
