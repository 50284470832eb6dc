package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DashboardCache stores pre-computed dashboard documents in the cache
// database, msgpack-encoded and keyed by tenant. Contents are ephemeral:
// anything here can be rebuilt from the ledger at any time.
type DashboardCache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewDashboardCache creates a dashboard cache over the cache database.
func NewDashboardCache(db *sql.DB, log zerolog.Logger) *DashboardCache {
	return &DashboardCache{
		db:  db,
		log: log.With().Str("service", "dashboard_cache").Logger(),
	}
}

// InitSchema creates the cache table when it does not exist yet.
func (c *DashboardCache) InitSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS dashboards (
		tenant_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		generated_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard cache schema: %w", err)
	}
	return nil
}

// Get returns the cached dashboard for the tenant, or (nil, nil) on a miss.
// A corrupt payload is treated as a miss: the cache is rebuildable, so
// decode failures are logged and discarded rather than surfaced.
func (c *DashboardCache) Get(tenantID string) (*Dashboard, error) {
	var payload []byte
	err := c.db.QueryRow(`SELECT payload FROM dashboards WHERE tenant_id = ?`, tenantID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached dashboard for tenant %s: %w", tenantID, err)
	}

	var dashboard Dashboard
	if err := msgpack.Unmarshal(payload, &dashboard); err != nil {
		c.log.Warn().Err(err).Str("tenant", tenantID).Msg("Discarding corrupt cached dashboard")
		return nil, nil
	}
	return &dashboard, nil
}

// Put stores the dashboard for its tenant, replacing any previous entry.
func (c *DashboardCache) Put(dashboard *Dashboard) error {
	payload, err := msgpack.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard for tenant %s: %w", dashboard.TenantID, err)
	}

	_, err = c.db.Exec(
		`INSERT INTO dashboards (tenant_id, payload, generated_at) VALUES (?, ?, ?)
		 ON CONFLICT(tenant_id) DO UPDATE SET payload = excluded.payload, generated_at = excluded.generated_at`,
		dashboard.TenantID, payload, dashboard.GeneratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to cache dashboard for tenant %s: %w", dashboard.TenantID, err)
	}

	c.log.Debug().Str("tenant", dashboard.TenantID).Int("bytes", len(payload)).Msg("Cached dashboard")
	return nil
}

// Invalidate drops the cached dashboard for the tenant, if any.
func (c *DashboardCache) Invalidate(tenantID string) error {
	_, err := c.db.Exec(`DELETE FROM dashboards WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return fmt.Errorf("failed to invalidate dashboard for tenant %s: %w", tenantID, err)
	}
	return nil
}
