package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/internal/agent/repository"
	"competiscope-agent/pkg/cache"
	"competiscope-agent/pkg/logger"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrCompanyRequired is returned when the company name is empty or blank.
	ErrCompanyRequired = errors.New("company name is required")
	// ErrAnalysisFailed is returned when the analysis cannot be completed.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// defaultConfidenceScore is substituted when the generator supplies no score.
const defaultConfidenceScore = 70

// analysisDataSources tags every assembled result with the categories of data
// that fed it.
var analysisDataSources = []string{"company_data", "news_analysis", "market_data", "ai_analysis"}

// AnalysisStore is the cache type owned by the analyzer.
type AnalysisStore = cache.Store[dto.CompetitorIntelligence]

// AnalyzerService produces competitor intelligence for a company.
type AnalyzerService interface {
	GetComprehensiveAnalysis(ctx context.Context, company, market string, focusAreas []string) (*dto.CompetitorIntelligence, error)
	CacheSize() int
}

// NewAnalyzerService creates a new analyzer service. The cache is owned by
// the service and lives for the process lifetime.
func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	companyInfoRepo repository.CompanyInfoRepository,
	newsRepo repository.NewsRepository,
	marketDataRepo repository.MarketDataRepository,
	aiRepo repository.AIRepository,
	analysisCache *AnalysisStore,
) AnalyzerService {
	return &analyzerService{
		cfg:             cfg,
		logger:          log,
		companyInfoRepo: companyInfoRepo,
		newsRepo:        newsRepo,
		marketDataRepo:  marketDataRepo,
		aiRepo:          aiRepo,
		analysisCache:   analysisCache,
	}
}

type analyzerService struct {
	cfg             *config.Config
	logger          *logger.Logger
	companyInfoRepo repository.CompanyInfoRepository
	newsRepo        repository.NewsRepository
	marketDataRepo  repository.MarketDataRepository
	aiRepo          repository.AIRepository
	analysisCache   *AnalysisStore
}

// BuildCacheKey derives the cache key for a request. Focus-area order is
// significant: the same areas in a different order produce a different key.
func BuildCacheKey(company, market string, focusAreas []string) string {
	return company + "_" + market + "_" + strings.Join(focusAreas, "-")
}

// GetComprehensiveAnalysis returns the cached analysis for the request when a
// fresh one exists, and otherwise collects company data, generates insights
// and caches the assembled result.
func (s *analyzerService) GetComprehensiveAnalysis(ctx context.Context, company, market string, focusAreas []string) (*dto.CompetitorIntelligence, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, ErrCompanyRequired
	}

	key := BuildCacheKey(company, market, focusAreas)
	if entry, ok := s.analysisCache.Get(key); ok && s.analysisCache.IsValid(entry, s.cfg.Cache.TTL) {
		s.logger.Info("Returning cached analysis", logger.StringField("company", company))
		result := entry.Data
		return &result, nil
	}

	s.logger.Info("Generating fresh analysis", logger.StringField("company", company))

	data := s.collectCompanyData(ctx, company, market, focusAreas)

	insightResult, err := s.aiRepo.GenerateInsights(ctx, data, focusAreas)
	if err != nil {
		s.logger.Error("Insight generation failed", logger.StringField("company", company), logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if insightResult.Fallback {
		s.logger.Info("Serving fallback insights", logger.StringField("company", company))
	}

	result := s.assembleIntelligence(company, insightResult.Insights)
	s.analysisCache.Put(key, *result)

	return result, nil
}

// CacheSize returns the number of cached analyses, stale entries included.
func (s *analyzerService) CacheSize() int {
	return s.analysisCache.Len()
}

// collectCompanyData fans out the three collectors concurrently and joins
// them. A failed collector never aborts the request: its bag is replaced with
// an error-tagged stand-in for that source only.
func (s *analyzerService) collectCompanyData(ctx context.Context, company, market string, focusAreas []string) *dto.CollectedData {
	var (
		basicInfo  map[string]interface{}
		recentNews []map[string]interface{}
		marketData map[string]interface{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := s.companyInfoRepo.GetBasicInfo(gctx, company)
		if err != nil {
			s.logger.Error("Error fetching company info", logger.StringField("company", company), logger.ErrorField(err))
			info = map[string]interface{}{"name": company, "error": "Could not fetch basic info"}
		}
		basicInfo = info
		return nil
	})
	g.Go(func() error {
		news, err := s.newsRepo.GetRecentNews(gctx, company, s.cfg.Collectors.NewsMaxAgeDays)
		if err != nil {
			s.logger.Error("Error fetching news", logger.StringField("company", company), logger.ErrorField(err))
			news = []map[string]interface{}{}
		}
		recentNews = news
		return nil
	})
	g.Go(func() error {
		market, err := s.marketDataRepo.GetMarketData(gctx, company)
		if err != nil {
			s.logger.Error("Error fetching market data", logger.StringField("company", company), logger.ErrorField(err))
			market = map[string]interface{}{"error": "Could not fetch market data"}
		}
		marketData = market
		return nil
	})
	// Collector failures are converted to placeholders above, so the join
	// never returns an error.
	_ = g.Wait()

	return &dto.CollectedData{
		BasicInfo:  basicInfo,
		RecentNews: recentNews,
		MarketData: marketData,
		Request: dto.AnalysisRequest{
			Company:    company,
			Market:     market,
			FocusAreas: focusAreas,
		},
	}
}

// assembleIntelligence fills any missing generator fields with fixed defaults
// and stamps the constant data source tags.
func (s *analyzerService) assembleIntelligence(company string, insights dto.AIInsights) *dto.CompetitorIntelligence {
	confidence := defaultConfidenceScore
	if insights.ConfidenceScore != nil {
		confidence = *insights.ConfidenceScore
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return &dto.CompetitorIntelligence{
		Company:         company,
		AnalysisSummary: insights.AnalysisSummary,
		Strengths:       orEmpty(insights.Strengths),
		Weaknesses:      orEmpty(insights.Weaknesses),
		Opportunities:   orEmpty(insights.Opportunities),
		Threats:         orEmpty(insights.Threats),
		MarketPosition:  insights.MarketPosition,
		Recommendations: orEmpty(insights.Recommendations),
		ConfidenceScore: confidence,
		DataSources:     append([]string(nil), analysisDataSources...),
	}
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
