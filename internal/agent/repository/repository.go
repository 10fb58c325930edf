package repository

import (
	"context"

	"competiscope-agent/internal/agent/dto"
)

// CompanyInfoRepository collects basic company attributes.
type CompanyInfoRepository interface {
	GetBasicInfo(ctx context.Context, company string) (map[string]interface{}, error)
}

// NewsRepository collects recent news items about a company.
type NewsRepository interface {
	GetRecentNews(ctx context.Context, company string, days int) ([]map[string]interface{}, error)
}

// MarketDataRepository collects market figures for a company.
type MarketDataRepository interface {
	GetMarketData(ctx context.Context, company string) (map[string]interface{}, error)
}

// AIRepository turns collected company data into structured competitive
// insights. A transport or API failure is returned as an error; an
// unparseable model response is not an error and yields the canned fallback
// insights instead, tagged on the result.
type AIRepository interface {
	GenerateInsights(ctx context.Context, data *dto.CollectedData, focusAreas []string) (*dto.InsightResult, error)
}
