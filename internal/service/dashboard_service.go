package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type financeSummaryReader interface {
	FinanceSummary(ctx context.Context) (*models.FinanceSummary, error)
}

type leadCounter interface {
	CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService composes the BDM landing page.
type DashboardService struct {
	payments financeSummaryReader
	leads    leadCounter
	cache    summaryCache
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService. A nil cache always reads through.
func NewDashboardService(payments financeSummaryReader, leads leadCounter, cache summaryCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{payments: payments, leads: leads, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// BDMSummary returns finance headline figures, served from cache while fresh, plus lead counts.
func (s *DashboardService) BDMSummary(ctx context.Context) (*models.BDMDashboard, error) {
	finance, cached, err := s.financeSummary(ctx)
	if err != nil {
		return nil, err
	}

	pipeline, err := s.leads.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leads")
	}
	if pipeline == nil {
		pipeline = make(map[models.LeadStatus]int, len(models.LeadStatuses))
	}
	for _, status := range models.LeadStatuses {
		if _, ok := pipeline[status]; !ok {
			pipeline[status] = 0
		}
	}

	return &models.BDMDashboard{Finance: *finance, Pipeline: pipeline, Cached: cached}, nil
}

func (s *DashboardService) financeSummary(ctx context.Context) (*models.FinanceSummary, bool, error) {
	if s.cache != nil {
		var cached models.FinanceSummary
		hit, err := s.cache.Get(ctx, dashboardSummaryCacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, true, nil
		}
	}

	summary, err := s.loadFinance(ctx)
	if err != nil {
		return nil, false, err
	}
	return summary, false, nil
}

func (s *DashboardService) loadFinance(ctx context.Context) (*models.FinanceSummary, error) {
	summary, err := s.payments.FinanceSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load finance summary")
	}
	summary.GeneratedAt = s.now().UTC()

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardSummaryCacheKey, summary, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}
