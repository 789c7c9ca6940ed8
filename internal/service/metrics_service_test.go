package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceCountsConversions(t *testing.T) {
	m := NewMetricsService()
	m.RecordConversion(ConversionOutcomeCreated)
	m.RecordConversion(ConversionOutcomeCreated)
	m.RecordConversion(ConversionOutcomeAlreadyConverted)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.conversions.WithLabelValues(ConversionOutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues(ConversionOutcomeAlreadyConverted)))
}

func TestMetricsServiceRecordsPayments(t *testing.T) {
	m := NewMetricsService()
	m.RecordPayment("UPI", decimal.RequireFromString("1500.50"))
	m.RecordInstallments(3)
	m.RecordInstallments(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("UPI")))
	assert.InDelta(t, 1500.50, testutil.ToFloat64(m.collected.WithLabelValues("UPI")), 0.001)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.installments))
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	assert.Equal(t, 0.5, testutil.ToFloat64(m.cacheHitRatio))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordConversion(ConversionOutcomeFailed)
		m.RecordPayment("CASH", decimal.NewFromInt(1))
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}
