package repository

import (
	"context"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

type marketDataRepository struct {
	cfg       *config.Config
	logger    *logger.Logger
	dataCache *gocache.Cache
}

// NewMarketDataRepository creates a collector for market figures. Figures are
// simulated until a market data provider is wired in.
func NewMarketDataRepository(cfg *config.Config, log *logger.Logger, dataCache *gocache.Cache) MarketDataRepository {
	return &marketDataRepository{
		cfg:       cfg,
		logger:    log,
		dataCache: dataCache,
	}
}

func (r *marketDataRepository) GetMarketData(ctx context.Context, company string) (map[string]interface{}, error) {
	cacheKey := "market_data:" + company
	if cached, found := r.dataCache.Get(cacheKey); found {
		return cached.(map[string]interface{}), nil
	}

	data := map[string]interface{}{
		"market_cap":   "Unknown",
		"stock_price":  "Unknown",
		"revenue":      "Unknown",
		"market_share": "Unknown",
		"growth_rate":  "Unknown",
		"source":       "market_simulation",
	}

	r.dataCache.Set(cacheKey, data, r.cfg.Collectors.DataTTL)
	return data, nil
}
