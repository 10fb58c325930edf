package service

import (
	"context"
	"fmt"

	"competiscope-agent/internal/agent/config"
	"competiscope-agent/pkg/logger"
	"competiscope-agent/pkg/telegram"
	"competiscope-agent/pkg/utils"

	"github.com/robfig/cron/v3"
)

// WatchlistService periodically analyzes the configured companies and sends
// each digest to the Telegram channel.
type WatchlistService interface {
	Start() error
	Stop()
	RunDigest(ctx context.Context)
}

// NewWatchlistService creates a new watchlist digest service.
func NewWatchlistService(cfg *config.Config, log *logger.Logger, analyzer AnalyzerService, notifier telegram.Notifier) WatchlistService {
	return &watchlistService{
		cfg:      cfg,
		logger:   log,
		analyzer: analyzer,
		notifier: notifier,
		cron:     cron.New(),
	}
}

type watchlistService struct {
	cfg      *config.Config
	logger   *logger.Logger
	analyzer AnalyzerService
	notifier telegram.Notifier
	cron     *cron.Cron
}

// Start schedules the digest. A disabled or empty watchlist is a no-op.
func (s *watchlistService) Start() error {
	if !s.cfg.Watchlist.Enabled || len(s.cfg.Watchlist.Companies) == 0 {
		s.logger.Info("Watchlist digest disabled")
		return nil
	}
	if s.notifier == nil {
		return fmt.Errorf("watchlist digest enabled but no notifier configured")
	}

	_, err := s.cron.AddFunc(s.cfg.Watchlist.CronExpression, func() {
		utils.GoSafe(func() {
			s.RunDigest(context.Background())
		})
	})
	if err != nil {
		return fmt.Errorf("invalid watchlist cron expression %q: %w", s.cfg.Watchlist.CronExpression, err)
	}

	s.cron.Start()
	s.logger.Info("Watchlist digest scheduled",
		logger.StringField("cron", s.cfg.Watchlist.CronExpression),
		logger.IntField("companies", len(s.cfg.Watchlist.Companies)))
	return nil
}

// Stop halts the schedule. Already-running digests finish on their own.
func (s *watchlistService) Stop() {
	s.cron.Stop()
}

// RunDigest analyzes every watchlist company and sends the formatted results.
// A failure on one company never blocks the rest.
func (s *watchlistService) RunDigest(ctx context.Context) {
	for _, company := range s.cfg.Watchlist.Companies {
		if !utils.ShouldContinue(ctx) {
			s.logger.Info("Watchlist digest cancelled")
			return
		}
		analysis, err := s.analyzer.GetComprehensiveAnalysis(ctx, company, s.cfg.Watchlist.Market, nil)
		if err != nil {
			s.logger.Error("Watchlist analysis failed", logger.StringField("company", company), logger.ErrorField(err))
			continue
		}

		if err := s.notifier.SendMessage(telegram.FormatAnalysisForChat(analysis)); err != nil {
			s.logger.Error("Failed to send watchlist digest", logger.StringField("company", company), logger.ErrorField(err))
		}
	}
}
