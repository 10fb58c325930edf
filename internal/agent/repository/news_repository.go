package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/pkg/logger"

	"github.com/mmcdole/gofeed"
	gocache "github.com/patrickmn/go-cache"
)

const maxNewsItems = 10

type newsRepository struct {
	cfg       *config.Config
	logger    *logger.Logger
	parser    *gofeed.Parser
	dataCache *gocache.Cache
}

// NewNewsRepository creates a collector for recent company news. When a feed
// URL is configured it reads the RSS feed; otherwise, and on any feed
// failure, it returns a simulated item.
func NewNewsRepository(cfg *config.Config, log *logger.Logger, dataCache *gocache.Cache) NewsRepository {
	return &newsRepository{
		cfg:       cfg,
		logger:    log,
		parser:    gofeed.NewParser(),
		dataCache: dataCache,
	}
}

func (r *newsRepository) GetRecentNews(ctx context.Context, company string, days int) ([]map[string]interface{}, error) {
	cacheKey := "recent_news:" + company
	if cached, found := r.dataCache.Get(cacheKey); found {
		return cached.([]map[string]interface{}), nil
	}

	var items []map[string]interface{}
	if r.cfg.Collectors.NewsFeedURL != "" {
		feedItems, err := r.fetchFeed(ctx, company, days)
		if err != nil {
			r.logger.Warn("News feed fetch failed, using simulated news",
				logger.StringField("company", company), logger.ErrorField(err))
		} else {
			items = feedItems
		}
	}

	if len(items) == 0 {
		items = []map[string]interface{}{
			{
				"title":     fmt.Sprintf("Recent developments at %s", company),
				"summary":   fmt.Sprintf("Latest news and updates about %s", company),
				"sentiment": "neutral",
				"date":      time.Now().Format(time.RFC3339),
				"source":    "news_simulation",
			},
		}
	}

	r.dataCache.Set(cacheKey, items, r.cfg.Collectors.DataTTL)
	return items, nil
}

func (r *newsRepository) fetchFeed(ctx context.Context, company string, days int) ([]map[string]interface{}, error) {
	feedURL := fmt.Sprintf(r.cfg.Collectors.NewsFeedURL, url.QueryEscape(company))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	var items []map[string]interface{}
	for _, item := range feed.Items {
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		published := ""
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format(time.RFC3339)
		}
		items = append(items, map[string]interface{}{
			"title":     item.Title,
			"summary":   item.Description,
			"sentiment": "neutral",
			"date":      published,
			"source":    "news_feed",
		})
		if len(items) >= maxNewsItems {
			break
		}
	}
	return items, nil
}
