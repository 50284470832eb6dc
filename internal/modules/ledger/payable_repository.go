package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/domain"
)

// PayableRepository handles payable persistence in the ledger database.
type PayableRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPayableRepository creates a new payable repository.
func NewPayableRepository(db *sql.DB, log zerolog.Logger) *PayableRepository {
	return &PayableRepository{
		db:  db,
		log: log.With().Str("repo", "payables").Logger(),
	}
}

// ListByTenant returns every payable for the tenant, optionally restricted
// to a due-date window. Records without a due date are always included; the
// engine decides how to bucket them.
func (r *PayableRepository) ListByTenant(tenantID string, from, to *time.Time) ([]domain.Payable, error) {
	query := `SELECT id, tenant_id, description, amount, amount_paid, due_date, paid_date,
	                 status, cost_center_id, category_id, project_id
	          FROM payables WHERE tenant_id = ?`
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
		return nil, fmt.Errorf("failed to query payables: %w", err)
	}
	defer rows.Close()

	payables := make([]domain.Payable, 0)
	for rows.Next() {
		var p domain.Payable
		var description, dueDate, paidDate, costCenterID, categoryID, projectID sql.NullString
		if err := rows.Scan(&p.ID, &p.TenantID, &description, &p.Amount, &p.AmountPaid,
			&dueDate, &paidDate, &p.Status, &costCenterID, &categoryID, &projectID); err != nil {
			return nil, fmt.Errorf("failed to scan payable: %w", err)
		}
		p.Description = description.String
		p.CostCenterID = costCenterID.String
		p.CategoryID = categoryID.String
		p.ProjectID = projectID.String
		p.DueDate = parseDate(dueDate, r.log, p.ID)
		if paid, ok := parseOptionalDate(paidDate, r.log, p.ID); ok {
			p.PaidDate = &paid
		}
		payables = append(payables, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payables: %w", err)
	}

	return payables, nil
}

// Create inserts a payable. The ledger store owns the CRUD paths; the
// analytics engine only ever reads.
func (r *PayableRepository) Create(p domain.Payable) error {
	_, err := r.db.Exec(
		`INSERT INTO payables (id, tenant_id, description, amount, amount_paid, due_date,
		                       paid_date, status, cost_center_id, category_id, project_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, nullable(p.Description), p.Amount, p.AmountPaid,
		formatDate(p.DueDate), formatOptionalDate(p.PaidDate), p.Status,
		nullable(p.CostCenterID), nullable(p.CategoryID), nullable(p.ProjectID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payable %s: %w", p.ID, err)
	}

	r.log.Debug().Str("id", p.ID).Float64("amount", p.Amount).Msg("Inserted payable")
	return nil
}

// parseDate decodes a stored date, returning the zero time for NULL or
// malformed values. Malformed dates are logged and isolated, never fatal:
// the record still participates in undated aggregates.
func parseDate(value sql.NullString, log zerolog.Logger, recordID string) time.Time {
	if !value.Valid || value.String == "" {
		return time.Time{}
	}
	parsed, err := time.ParseInLocation(dateFormat, value.String, time.UTC)
	if err != nil {
		log.Warn().Str("id", recordID).Str("date", value.String).Msg("Skipping malformed date")
		return time.Time{}
	}
	return parsed
}

func parseOptionalDate(value sql.NullString, log zerolog.Logger, recordID string) (time.Time, bool) {
	parsed := parseDate(value, log, recordID)
	return parsed, !parsed.IsZero()
}

func formatDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateFormat)
}

func formatOptionalDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
