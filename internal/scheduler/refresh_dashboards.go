package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/services"
)

// RefreshDashboardsJob rebuilds the cached dashboard for every tenant, so the
// first dashboard read of the day is served warm.
type RefreshDashboardsJob struct {
	analytics *services.AnalyticsService
	log       zerolog.Logger
}

// NewRefreshDashboardsJob creates the dashboard refresh job.
func NewRefreshDashboardsJob(analytics *services.AnalyticsService, log zerolog.Logger) *RefreshDashboardsJob {
	return &RefreshDashboardsJob{
		analytics: analytics,
		log:       log.With().Str("job", "refresh_dashboards").Logger(),
	}
}

// Name returns the job identifier.
func (j *RefreshDashboardsJob) Name() string {
	return "refresh_dashboards"
}

// Run refreshes every tenant's dashboard as of today in UTC.
func (j *RefreshDashboardsJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	asOf := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return j.analytics.RefreshAll(ctx, asOf)
}
