package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/service"
)

func TestMetricsHandlerEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordConversion(service.ConversionOutcomeCreated)

	healthy := NewMetricsHandler(metrics, map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
	})
	broken := NewMetricsHandler(nil, map[string]Pinger{
		"redis": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	r := gin.New()
	r.GET("/metrics", healthy.Prometheus)
	r.GET("/health", healthy.Health)
	r.GET("/ready", healthy.Ready)
	r.GET("/broken/ready", broken.Ready)
	r.GET("/broken/metrics", broken.Prometheus)

	w := doGet(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "studylab_conversions_total")

	assert.Equal(t, http.StatusOK, doGet(r, "/health").Code)

	w = doGet(r, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	w = doGet(r, "/broken/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")

	assert.Equal(t, http.StatusServiceUnavailable, doGet(r, "/broken/metrics").Code)
}
