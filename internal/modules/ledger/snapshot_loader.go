package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fluxohq/fluxo/internal/domain"
)

// SnapshotLoader assembles the immutable snapshot the analytics engine
// consumes. The six reads are independent, so they fan out concurrently; the
// first error cancels the rest.
type SnapshotLoader struct {
	db          *sql.DB
	payables    *PayableRepository
	receivables *ReceivableRepository
	references  *ReferenceRepository
	balances    *BalanceRepository
	log         zerolog.Logger
}

// NewSnapshotLoader creates a snapshot loader over a single ledger database.
func NewSnapshotLoader(db *sql.DB, log zerolog.Logger) *SnapshotLoader {
	return &SnapshotLoader{
		db:          db,
		payables:    NewPayableRepository(db, log),
		receivables: NewReceivableRepository(db, log),
		references:  NewReferenceRepository(db, log),
		balances:    NewBalanceRepository(db, log),
		log:         log.With().Str("component", "snapshot_loader").Logger(),
	}
}

// TenantIDs returns every tenant that has at least one ledger record. The
// cache refresher iterates this list.
func (l *SnapshotLoader) TenantIDs() ([]string, error) {
	rows, err := l.db.Query(
		`SELECT tenant_id FROM payables UNION SELECT tenant_id FROM receivables ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

// Payables exposes the payable repository for the CRUD paths.
func (l *SnapshotLoader) Payables() *PayableRepository { return l.payables }

// Receivables exposes the receivable repository for the CRUD paths.
func (l *SnapshotLoader) Receivables() *ReceivableRepository { return l.receivables }

// References exposes the reference repository for the CRUD paths.
func (l *SnapshotLoader) References() *ReferenceRepository { return l.references }

// Balances exposes the balance repository for the CRUD paths.
func (l *SnapshotLoader) Balances() *BalanceRepository { return l.balances }

// Load fetches everything the engine needs for one tenant. Record sets are
// loaded without a date window; the engine decides which records each
// computation consumes.
func (l *SnapshotLoader) Load(ctx context.Context, tenantID string) (*domain.Snapshot, error) {
	start := time.Now()
	snap := &domain.Snapshot{TenantID: tenantID}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		payables, err := l.payables.ListByTenant(tenantID, nil, nil)
		if err != nil {
			return err
		}
		snap.Payables = payables
		return nil
	})
	g.Go(func() error {
		receivables, err := l.receivables.ListByTenant(tenantID, nil, nil)
		if err != nil {
			return err
		}
		snap.Receivables = receivables
		return nil
	})
	g.Go(func() error {
		clients, err := l.references.Clients(tenantID)
		if err != nil {
			return err
		}
		snap.Clients = clients
		return nil
	})
	g.Go(func() error {
		centers, err := l.references.CostCenters(tenantID)
		if err != nil {
			return err
		}
		snap.CostCenters = centers
		return nil
	})
	g.Go(func() error {
		categories, err := l.references.Categories(tenantID)
		if err != nil {
			return err
		}
		snap.Categories = categories
		return nil
	})
	g.Go(func() error {
		balance, err := l.balances.Latest(tenantID)
		if err != nil {
			return err
		}
		snap.Balance = balance
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.log.Debug().
		Str("tenant", tenantID).
		Int("payables", len(snap.Payables)).
		Int("receivables", len(snap.Receivables)).
		Dur("duration", time.Since(start)).
		Msg("Loaded ledger snapshot")

	return snap, nil
}
