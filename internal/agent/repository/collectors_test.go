package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/pkg/logger"
)

func collectorsConfig() *config.Config {
	return &config.Config{
		Collectors: config.Collectors{
			DataTTL:        time.Minute,
			NewsMaxAgeDays: 30,
		},
	}
}

func TestCompanyInfo_SimulatedBag(t *testing.T) {
	cfg := collectorsConfig()
	repo := NewCompanyInfoRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	info, err := repo.GetBasicInfo(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", info["name"])
	assert.Equal(t, "public_data", info["source"])
	assert.Contains(t, info["description"], "Acme")
}

func TestCompanyInfo_LookupExtractsDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:description" content="Acme makes everything." />
		</head><body></body></html>`)
	}))
	defer srv.Close()

	cfg := collectorsConfig()
	cfg.Collectors.CompanyLookupURL = srv.URL + "?q=%s"
	repo := NewCompanyInfoRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	info, err := repo.GetBasicInfo(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme makes everything.", info["description"])
	assert.Equal(t, "company_lookup", info["source"])
}

func TestCompanyInfo_LookupFailureFallsBackToSimulated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := collectorsConfig()
	cfg.Collectors.CompanyLookupURL = srv.URL + "?q=%s"
	repo := NewCompanyInfoRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	info, err := repo.GetBasicInfo(context.Background(), "Acme")
	require.NoError(t, err, "a failed lookup is not a collector failure")
	assert.Equal(t, "public_data", info["source"])
}

func TestCompanyInfo_SecondCallServedFromDataCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `<html><head><meta name="description" content="Cached." /></head></html>`)
	}))
	defer srv.Close()

	cfg := collectorsConfig()
	cfg.Collectors.CompanyLookupURL = srv.URL + "?q=%s"
	repo := NewCompanyInfoRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	_, err := repo.GetBasicInfo(context.Background(), "Acme")
	require.NoError(t, err)
	_, err = repo.GetBasicInfo(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNews_SimulatedItem(t *testing.T) {
	cfg := collectorsConfig()
	repo := NewNewsRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	items, err := repo.GetRecentNews(context.Background(), "Acme", 30)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0]["title"], "Acme")
	assert.Equal(t, "neutral", items[0]["sentiment"])
	assert.Equal(t, "news_simulation", items[0]["source"])
}

func TestNews_FeedItemsFilteredByAge(t *testing.T) {
	fresh := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	stale := time.Now().Add(-90 * 24 * time.Hour).Format(time.RFC1123Z)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Business News</title>
<item><title>Acme expands</title><description>New plant.</description><pubDate>%s</pubDate></item>
<item><title>Old Acme story</title><description>Ancient.</description><pubDate>%s</pubDate></item>
</channel></rss>`, fresh, stale)
	}))
	defer srv.Close()

	cfg := collectorsConfig()
	cfg.Collectors.NewsFeedURL = srv.URL + "?q=%s"
	repo := NewNewsRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	items, err := repo.GetRecentNews(context.Background(), "Acme", 30)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme expands", items[0]["title"])
	assert.Equal(t, "news_feed", items[0]["source"])
}

func TestNews_FeedFailureFallsBackToSimulated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := collectorsConfig()
	cfg.Collectors.NewsFeedURL = srv.URL + "?q=%s"
	repo := NewNewsRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	items, err := repo.GetRecentNews(context.Background(), "Acme", 30)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "news_simulation", items[0]["source"])
}

func TestMarketData_SimulatedBag(t *testing.T) {
	cfg := collectorsConfig()
	repo := NewMarketDataRepository(cfg, logger.NewNop(), gocache.New(time.Minute, 0))

	data, err := repo.GetMarketData(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "market_simulation", data["source"])
	assert.Equal(t, "Unknown", data["market_cap"])
}
