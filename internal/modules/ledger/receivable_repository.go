package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/domain"
)

// ReceivableRepository handles receivable persistence in the ledger database.
type ReceivableRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewReceivableRepository creates a new receivable repository.
func NewReceivableRepository(db *sql.DB, log zerolog.Logger) *ReceivableRepository {
	return &ReceivableRepository{
		db:  db,
		log: log.With().Str("repo", "receivables").Logger(),
	}
}

// ListByTenant returns every receivable for the tenant, optionally
// restricted to a due-date window.
func (r *ReceivableRepository) ListByTenant(tenantID string, from, to *time.Time) ([]domain.Receivable, error) {
	query := `SELECT id, tenant_id, description, amount, amount_paid, due_date, paid_date,
	                 status, client_id, project_id
	          FROM receivables WHERE tenant_id = ?`
	args := []interface{}{tenantID}

	if from != nil {
		query += " AND (due_date IS NULL OR due_date >= ?)"
		args = append(args, from.Format(dateFormat))
	}
	if to != nil {
		query += " AND (due_date IS NULL OR due_date <= ?)"
		args = append(args, to.Format(dateFormat))
	}
	query += " ORDER BY due_date"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receivables: %w", err)
	}
	defer rows.Close()

	receivables := make([]domain.Receivable, 0)
	for rows.Next() {
		var rec domain.Receivable
		var description, dueDate, paidDate, clientID, projectID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.TenantID, &description, &rec.Amount, &rec.AmountPaid,
			&dueDate, &paidDate, &rec.Status, &clientID, &projectID); err != nil {
			return nil, fmt.Errorf("failed to scan receivable: %w", err)
		}
		rec.Description = description.String
		rec.ClientID = clientID.String
		rec.ProjectID = projectID.String
		rec.DueDate = parseDate(dueDate, r.log, rec.ID)
		if paid, ok := parseOptionalDate(paidDate, r.log, rec.ID); ok {
			rec.PaidDate = &paid
		}
		receivables = append(receivables, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receivables: %w", err)
	}

	return receivables, nil
}

// Create inserts a receivable.
func (r *ReceivableRepository) Create(rec domain.Receivable) error {
	_, err := r.db.Exec(
		`INSERT INTO receivables (id, tenant_id, description, amount, amount_paid, due_date,
		                          paid_date, status, client_id, project_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TenantID, nullable(rec.Description), rec.Amount, rec.AmountPaid,
		formatDate(rec.DueDate), formatOptionalDate(rec.PaidDate), rec.Status,
		nullable(rec.ClientID), nullable(rec.ProjectID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert receivable %s: %w", rec.ID, err)
	}

	r.log.Debug().Str("id", rec.ID).Float64("amount", rec.Amount).Msg("Inserted receivable")
	return nil
}
