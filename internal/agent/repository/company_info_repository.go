package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	gocache "github.com/patrickmn/go-cache"
)

type companyInfoRepository struct {
	cfg       *config.Config
	logger    *logger.Logger
	client    *http.Client
	dataCache *gocache.Cache
}

// NewCompanyInfoRepository creates a collector for basic company information.
// When a lookup URL is configured it fetches the page and extracts the
// description from its meta tags; otherwise, and on any lookup failure, it
// returns a simulated attribute bag.
func NewCompanyInfoRepository(cfg *config.Config, log *logger.Logger, dataCache *gocache.Cache) CompanyInfoRepository {
	return &companyInfoRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		dataCache: dataCache,
	}
}

func (r *companyInfoRepository) GetBasicInfo(ctx context.Context, company string) (map[string]interface{}, error) {
	cacheKey := "basic_info:" + company
	if cached, found := r.dataCache.Get(cacheKey); found {
		return cached.(map[string]interface{}), nil
	}

	info := map[string]interface{}{
		"name":         company,
		"industry":     "Technology",
		"founded":      "Unknown",
		"headquarters": "Unknown",
		"employees":    "Unknown",
		"description":  fmt.Sprintf("Information about %s", company),
		"source":       "public_data",
	}

	if r.cfg.Collectors.CompanyLookupURL != "" {
		if description, err := r.lookupDescription(ctx, company); err != nil {
			r.logger.Warn("Company lookup failed, using simulated info",
				logger.StringField("company", company), logger.ErrorField(err))
		} else if description != "" {
			info["description"] = description
			info["source"] = "company_lookup"
		}
	}

	r.dataCache.Set(cacheKey, info, r.cfg.Collectors.DataTTL)
	return info, nil
}

func (r *companyInfoRepository) lookupDescription(ctx context.Context, company string) (string, error) {
	lookupURL := fmt.Sprintf(r.cfg.Collectors.CompanyLookupURL, url.QueryEscape(company))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create lookup request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch company page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK response from company lookup: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse company page: %w", err)
	}

	for _, selector := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if content, ok := doc.Find(selector).Attr("content"); ok {
			return strings.TrimSpace(content), nil
		}
	}
	return "", nil
}
