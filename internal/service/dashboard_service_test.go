package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type stubFinanceReader struct {
	summary *models.FinanceSummary
	err     error
	calls   int
}

func (s *stubFinanceReader) FinanceSummary(context.Context) (*models.FinanceSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.summary
	return &copied, nil
}

type stubLeadCounter struct {
	counts map[models.LeadStatus]int
}

func (s stubLeadCounter) CountByStatus(context.Context) (map[models.LeadStatus]int, error) {
	out := map[models.LeadStatus]int{}
	for k, v := range s.counts {
		out[k] = v
	}
	return out, nil
}

func TestBDMSummaryCachesFinanceFigures(t *testing.T) {
	reader := &stubFinanceReader{summary: &models.FinanceSummary{
		TotalIncome:     decimal.NewFromInt(2000),
		ExpectedRevenue: decimal.NewFromInt(12000),
		PendingIncome:   decimal.NewFromInt(10000),
		TotalStudents:   1,
	}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewDashboardService(reader, stubLeadCounter{counts: map[models.LeadStatus]int{models.LeadStatusConverted: 1}}, cache, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC) }

	first, err := svc.BDMSummary(context.Background())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, first.Finance.PendingIncome.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 1, first.Pipeline[models.LeadStatusConverted])
	assert.Equal(t, 0, first.Pipeline[models.LeadStatusNew])

	second, err := svc.BDMSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, reader.calls)
	assert.True(t, second.Finance.GeneratedAt.Equal(first.Finance.GeneratedAt))

	cache.Invalidate(context.Background(), dashboardSummaryCacheKey)
	_, err = svc.BDMSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reader.calls)
}

func TestBDMSummaryWithoutCache(t *testing.T) {
	reader := &stubFinanceReader{summary: &models.FinanceSummary{}}
	svc := NewDashboardService(reader, stubLeadCounter{}, nil, 0, nil)

	_, err := svc.BDMSummary(context.Background())
	require.NoError(t, err)
	_, err = svc.BDMSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reader.calls)
}

func TestBDMSummaryWrapsRepositoryErrors(t *testing.T) {
	svc := NewDashboardService(&stubFinanceReader{err: errors.New("boom")}, stubLeadCounter{}, nil, 0, nil)

	_, err := svc.BDMSummary(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
