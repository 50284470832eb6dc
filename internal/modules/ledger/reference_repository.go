package ledger

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/domain"
)

// ReferenceRepository handles the reference dictionaries used for name
// lookups during grouping: clients, cost centers and categories.
// The engine tolerates dictionaries that do not cover every foreign key, so
// these reads never fail on missing entries.
type ReferenceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(db *sql.DB, log zerolog.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		db:  db,
		log: log.With().Str("repo", "references").Logger(),
	}
}

// Clients returns the tenant's client dictionary.
func (r *ReferenceRepository) Clients(tenantID string) ([]domain.Client, error) {
	rows, err := r.db.Query(`SELECT id, tenant_id, name FROM clients WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CostCenters returns the tenant's cost-center dictionary.
func (r *ReferenceRepository) CostCenters(tenantID string) ([]domain.CostCenter, error) {
	rows, err := r.db.Query(`SELECT id, tenant_id, name FROM cost_centers WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost centers: %w", err)
	}
	defer rows.Close()

	centers := make([]domain.CostCenter, 0)
	for rows.Next() {
		var c domain.CostCenter
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan cost center: %w", err)
		}
		centers = append(centers, c)
	}
	return centers, rows.Err()
}

// Categories returns the tenant's category dictionary.
func (r *ReferenceRepository) Categories(tenantID string) ([]domain.Category, error) {
	rows, err := r.db.Query(`SELECT id, tenant_id, name FROM categories WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpsertClient inserts or updates a client dictionary entry.
func (r *ReferenceRepository) UpsertClient(c domain.Client) error {
	_, err := r.db.Exec(
		`INSERT INTO clients (id, tenant_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		c.ID, c.TenantID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert client %s: %w", c.ID, err)
	}
	return nil
}

// UpsertCostCenter inserts or updates a cost-center dictionary entry.
func (r *ReferenceRepository) UpsertCostCenter(c domain.CostCenter) error {
	_, err := r.db.Exec(
		`INSERT INTO cost_centers (id, tenant_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		c.ID, c.TenantID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cost center %s: %w", c.ID, err)
	}
	return nil
}

// UpsertCategory inserts or updates a category dictionary entry.
func (r *ReferenceRepository) UpsertCategory(c domain.Category) error {
	_, err := r.db.Exec(
		`INSERT INTO categories (id, tenant_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		c.ID, c.TenantID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert category %s: %w", c.ID, err)
	}
	return nil
}
