package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/domain"
)

// BalanceRepository handles manual balance snapshots. The latest snapshot is
// the tenant's last confirmed cash position; its absence reads as nil, which
// the engine treats as a zero starting balance.
type BalanceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewBalanceRepository creates a new balance repository.
func NewBalanceRepository(db *sql.DB, log zerolog.Logger) *BalanceRepository {
	return &BalanceRepository{
		db:  db,
		log: log.With().Str("repo", "balances").Logger(),
	}
}

// Latest returns the most recent balance snapshot for the tenant, or
// (nil, nil) when none was ever recorded - a missing balance is a valid
// state, not an error.
func (r *BalanceRepository) Latest(tenantID string) (*domain.BalanceSnapshot, error) {
	var balance float64
	var recordedAt string
	err := r.db.QueryRow(
		`SELECT balance, recorded_at FROM balance_snapshots
		 WHERE tenant_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1`,
		tenantID,
	).Scan(&balance, &recordedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest balance for tenant %s: %w", tenantID, err)
	}

	at, err := time.ParseInLocation(time.RFC3339, recordedAt, time.UTC)
	if err != nil {
		r.log.Warn().Str("tenant", tenantID).Str("recorded_at", recordedAt).Msg("Malformed balance timestamp")
		at = time.Time{}
	}

	return &domain.BalanceSnapshot{Balance: balance, RecordedAt: at}, nil
}

// Record stores a manually confirmed balance for the tenant.
func (r *BalanceRepository) Record(tenantID string, balance float64, recordedAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO balance_snapshots (tenant_id, balance, recorded_at) VALUES (?, ?, ?)`,
		tenantID, balance, recordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record balance for tenant %s: %w", tenantID, err)
	}

	r.log.Debug().Str("tenant", tenantID).Float64("balance", balance).Msg("Recorded balance snapshot")
	return nil
}
