package kpi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthOf_Cash(t *testing.T) {
	assert.Equal(t, StatusCritical, HealthOf(MetricCash, 0))
	assert.Equal(t, StatusCritical, HealthOf(MetricCash, -100))
	assert.Equal(t, StatusHealthy, HealthOf(MetricCash, 0.01))
}

func TestHealthOf_MarginBoundaries(t *testing.T) {
	assert.Equal(t, StatusCritical, HealthOf(MetricMargin, 4.99))
	assert.Equal(t, StatusAttention, HealthOf(MetricMargin, 5.0), "Exactly 5% is attention, not critical")
	assert.Equal(t, StatusAttention, HealthOf(MetricMargin, 14.99))
	assert.Equal(t, StatusHealthy, HealthOf(MetricMargin, 15.0), "Exactly 15% is healthy")
	assert.Equal(t, StatusHealthy, HealthOf(MetricMargin, 60.0))
}

func TestHealthOf_Runway(t *testing.T) {
	assert.Equal(t, StatusCritical, HealthOf(MetricRunway, 1.9))
	assert.Equal(t, StatusAttention, HealthOf(MetricRunway, 2.0))
	assert.Equal(t, StatusAttention, HealthOf(MetricRunway, 5.9))
	assert.Equal(t, StatusHealthy, HealthOf(MetricRunway, 6.0))
	assert.Equal(t, StatusHealthy, HealthOf(MetricRunway, math.Inf(1)))
}

func TestHealthOf_BurnRateVariation(t *testing.T) {
	assert.Equal(t, StatusHealthy, HealthOf(MetricBurnRate, -5.0), "Shrinking burn is healthy")
	assert.Equal(t, StatusHealthy, HealthOf(MetricBurnRate, 10.0))
	assert.Equal(t, StatusAttention, HealthOf(MetricBurnRate, 10.1))
	assert.Equal(t, StatusAttention, HealthOf(MetricBurnRate, 20.0))
	assert.Equal(t, StatusCritical, HealthOf(MetricBurnRate, 20.1))
}

func TestHealthOf_UnknownMetricDefaultsHealthy(t *testing.T) {
	assert.Equal(t, StatusHealthy, HealthOf("unknown", 0))
}
