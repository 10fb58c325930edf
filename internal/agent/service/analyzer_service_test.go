package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/pkg/cache"
	"competiscope-agent/pkg/logger"
)

type fakeCompanyInfoRepo struct {
	calls int
	err   error
}

func (f *fakeCompanyInfoRepo) GetBasicInfo(_ context.Context, company string) (map[string]interface{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"name": company, "industry": "Technology"}, nil
}

type fakeNewsRepo struct {
	calls int
	err   error
}

func (f *fakeNewsRepo) GetRecentNews(_ context.Context, company string, _ int) ([]map[string]interface{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []map[string]interface{}{{"title": "News about " + company}}, nil
}

type fakeMarketDataRepo struct {
	calls int
	err   error
}

func (f *fakeMarketDataRepo) GetMarketData(_ context.Context, _ string) (map[string]interface{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"market_cap": "1B"}, nil
}

type fakeAIRepo struct {
	calls    int
	lastData *dto.CollectedData
	result   *dto.InsightResult
	err      error
}

func (f *fakeAIRepo) GenerateInsights(_ context.Context, data *dto.CollectedData, _ []string) (*dto.InsightResult, error) {
	f.calls++
	f.lastData = data
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fixture struct {
	svc      AnalyzerService
	infoRepo *fakeCompanyInfoRepo
	newsRepo *fakeNewsRepo
	mktRepo  *fakeMarketDataRepo
	aiRepo   *fakeAIRepo
	now      *time.Time
}

func newFixture(t *testing.T, result *dto.InsightResult) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		infoRepo: &fakeCompanyInfoRepo{},
		newsRepo: &fakeNewsRepo{},
		mktRepo:  &fakeMarketDataRepo{},
		aiRepo:   &fakeAIRepo{result: result},
		now:      &now,
	}

	cfg := &config.Config{
		Cache:      config.Cache{TTL: time.Hour},
		Collectors: config.Collectors{NewsMaxAgeDays: 30},
	}
	store := cache.New(cache.WithClock[dto.CompetitorIntelligence](func() time.Time { return *f.now }))
	f.svc = NewAnalyzerService(cfg, logger.NewNop(), f.infoRepo, f.newsRepo, f.mktRepo, f.aiRepo, store)
	return f
}

func intPtr(v int) *int { return &v }

func insights(confidence *int) *dto.InsightResult {
	return &dto.InsightResult{
		Insights: dto.AIInsights{
			AnalysisSummary: "Summary.",
			Strengths:       []string{"s1"},
			Weaknesses:      []string{"w1"},
			Opportunities:   []string{"o1"},
			Threats:         []string{"t1"},
			MarketPosition:  "Leader",
			Recommendations: []string{"r1"},
			ConfidenceScore: confidence,
		},
	}
}

func TestGetComprehensiveAnalysis_SecondCallServedFromCache(t *testing.T) {
	f := newFixture(t, insights(intPtr(85)))

	first, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "tech", []string{"a", "b"})
	require.NoError(t, err)

	second, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "tech", []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.aiRepo.calls, "second call must not regenerate")
	assert.Equal(t, 1, f.infoRepo.calls)
	assert.Equal(t, 1, f.newsRepo.calls)
	assert.Equal(t, 1, f.mktRepo.calls)
	assert.Equal(t, 1, f.svc.CacheSize())
}

func TestGetComprehensiveAnalysis_RegeneratesAfterTTL(t *testing.T) {
	f := newFixture(t, insights(intPtr(85)))

	_, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	require.NoError(t, err)

	*f.now = f.now.Add(61 * time.Minute)

	_, err = f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, f.aiRepo.calls, "stale entry must trigger regeneration")
	assert.Equal(t, 2, f.infoRepo.calls)
	assert.Equal(t, 1, f.svc.CacheSize(), "stale entry is overwritten, not duplicated")
}

func TestBuildCacheKey_Deterministic(t *testing.T) {
	key1 := BuildCacheKey("Apple", "tech", []string{"a", "b"})
	key2 := BuildCacheKey("Apple", "tech", []string{"a", "b"})
	key3 := BuildCacheKey("Apple", "tech", []string{"b", "a"})

	assert.Equal(t, key1, key2)
	assert.NotEqual(t, key1, key3, "focus-area order is part of the key")
}

func TestGetComprehensiveAnalysis_FocusAreaOrderMisses(t *testing.T) {
	f := newFixture(t, insights(intPtr(85)))

	_, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Apple", "tech", []string{"a", "b"})
	require.NoError(t, err)
	_, err = f.svc.GetComprehensiveAnalysis(context.Background(), "Apple", "tech", []string{"b", "a"})
	require.NoError(t, err)

	assert.Equal(t, 2, f.aiRepo.calls, "reordered focus areas are a distinct request")
	assert.Equal(t, 2, f.svc.CacheSize())
}

func TestGetComprehensiveAnalysis_DefaultsMissingFields(t *testing.T) {
	f := newFixture(t, &dto.InsightResult{
		Insights: dto.AIInsights{AnalysisSummary: "Thin payload."},
	})

	result, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 70, result.ConfidenceScore, "missing score defaults to 70")
	assert.NotNil(t, result.Strengths)
	assert.Empty(t, result.Strengths)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, []string{"company_data", "news_analysis", "market_data", "ai_analysis"}, result.DataSources)
}

func TestGetComprehensiveAnalysis_ClampsConfidenceScore(t *testing.T) {
	f := newFixture(t, insights(intPtr(140)))

	result, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 100, result.ConfidenceScore)
}

func TestGetComprehensiveAnalysis_FallbackConfidencePassesThrough(t *testing.T) {
	f := newFixture(t, &dto.InsightResult{
		Insights: dto.AIInsights{
			AnalysisSummary: "Basic analysis of Acme based on available data.",
			ConfidenceScore: intPtr(60),
		},
		Fallback: true,
	})

	result, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 60, result.ConfidenceScore)
}

func TestGetComprehensiveAnalysis_RejectsBlankCompany(t *testing.T) {
	f := newFixture(t, insights(intPtr(85)))

	for _, company := range []string{"", "   ", "\t\n"} {
		_, err := f.svc.GetComprehensiveAnalysis(context.Background(), company, "", nil)
		assert.ErrorIs(t, err, ErrCompanyRequired)
	}

	assert.Zero(t, f.infoRepo.calls, "validation happens before any collector call")
	assert.Zero(t, f.newsRepo.calls)
	assert.Zero(t, f.mktRepo.calls)
	assert.Zero(t, f.aiRepo.calls)
}

func TestGetComprehensiveAnalysis_CollectorFailureIsIsolated(t *testing.T) {
	f := newFixture(t, insights(intPtr(85)))
	f.infoRepo.err = errors.New("upstream down")
	f.mktRepo.err = errors.New("provider down")

	result, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	require.NoError(t, err, "collector failures never abort the request")
	assert.Equal(t, "Acme", result.Company)

	require.NotNil(t, f.aiRepo.lastData)
	assert.Equal(t, "Could not fetch basic info", f.aiRepo.lastData.BasicInfo["error"])
	assert.Equal(t, "Could not fetch market data", f.aiRepo.lastData.MarketData["error"])
	assert.NotEmpty(t, f.aiRepo.lastData.RecentNews, "healthy collector output is kept")
}

func TestGetComprehensiveAnalysis_GeneratorFailureIsFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.aiRepo.err = errors.New("gemini unreachable")

	_, err := f.svc.GetComprehensiveAnalysis(context.Background(), "Acme", "", nil)
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Zero(t, f.svc.CacheSize(), "failed requests are not cached")
}

func TestGetComprehensiveAnalysis_RequestSnapshotInCollectedData(t *testing.T) {
	f := newFixture(t, insights(intPtr(85)))

	_, err := f.svc.GetComprehensiveAnalysis(context.Background(), "  Acme  ", "tech", []string{"pricing"})
	require.NoError(t, err)

	require.NotNil(t, f.aiRepo.lastData)
	assert.Equal(t, "Acme", f.aiRepo.lastData.Request.Company)
	assert.Equal(t, "tech", f.aiRepo.lastData.Request.Market)
	assert.Equal(t, []string{"pricing"}, f.aiRepo.lastData.Request.FocusAreas)
}
