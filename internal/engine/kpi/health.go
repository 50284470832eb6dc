package kpi

import "math"

// Status classifies a KPI into a health tier.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusAttention Status = "attention"
	StatusCritical  Status = "critical"
)

// Metric names accepted by HealthOf.
const (
	MetricCash     = "cash"
	MetricMargin   = "margin"
	MetricRunway   = "runway"
	MetricBurnRate = "burn_rate"
)

// Health tier boundaries. Fixed for every tenant in this version.
const (
	MarginCriticalBelowPct  = 5.0  // Margin below this is critical
	MarginHealthyFromPct    = 15.0 // Margin at or above this is healthy
	RunwayCriticalBelow     = 2.0  // Months of runway below this is critical
	RunwayHealthyFrom       = 6.0  // Months of runway at or above this is healthy
	BurnIncreaseCriticalPct = 20.0 // Burn growing faster than this is critical
	BurnIncreaseWarnPct     = 10.0 // Burn growing faster than this needs attention
)

// HealthOf classifies a metric value into a health tier by fixed thresholds.
// Boundary semantics: a margin of exactly 5% is attention (not critical) and
// exactly 15% is healthy. Unknown metric names report healthy, matching the
// defensive-default policy of the engine.
func HealthOf(metric string, value float64) Status {
	switch metric {
	case MetricCash:
		if value <= 0 {
			return StatusCritical
		}
		return StatusHealthy

	case MetricMargin:
		switch {
		case value < MarginCriticalBelowPct:
			return StatusCritical
		case value < MarginHealthyFromPct:
			return StatusAttention
		default:
			return StatusHealthy
		}

	case MetricRunway:
		switch {
		case math.IsInf(value, 1):
			return StatusHealthy
		case value < RunwayCriticalBelow:
			return StatusCritical
		case value < RunwayHealthyFrom:
			return StatusAttention
		default:
			return StatusHealthy
		}

	case MetricBurnRate:
		// Value is the burn variation in percent; growth is the risk signal
		switch {
		case value > BurnIncreaseCriticalPct:
			return StatusCritical
		case value > BurnIncreaseWarnPct:
			return StatusAttention
		default:
			return StatusHealthy
		}
	}

	return StatusHealthy
}
