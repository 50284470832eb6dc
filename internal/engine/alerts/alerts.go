// Package alerts scans the projected balance series and the raw ledger for
// threshold violations and emits typed alerts for the dashboard layer.
//
// Thresholds are fixed constants, not configurable per tenant in this
// version. No alert is emitted twice for the same logical condition within
// one run: the negative-balance rule reports only the first offending day,
// the concentration rule deduplicates by date, and overdue receivables fold
// into a single aggregate.
package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/projection"
)

// Severity ranks how urgent an alert is.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
)

// Type identifies the rule that produced an alert.
type Type string

const (
	TypeNegativeBalance      Type = "negative_balance"
	TypePaymentConcentration Type = "payment_concentration"
	TypeOverdueReceivables   Type = "overdue_receivables"
)

const (
	// MaxPayablesPerDay is the payment-concentration threshold: more than
	// this many distinct open payables due on a single day raises a warning.
	MaxPayablesPerDay = 3
)

// Alert is one threshold violation found during a run.
type Alert struct {
	ID       string    `json:"id"`
	Type     Type      `json:"type"`
	Severity Severity  `json:"severity"`
	Date     time.Time `json:"date"`
	Message  string    `json:"message"`
	Balance  float64   `json:"balance,omitempty"` // Projected balance on the offending day
	Amount   float64   `json:"amount,omitempty"`  // Aggregate open exposure
	Count    int       `json:"count,omitempty"`   // Records behind an aggregate alert
}

// Generate evaluates every alert rule once against the projected series and
// the raw ledger. The result order is stable: negative balance first, then
// concentration days in series order, then the overdue aggregate.
func Generate(snap *domain.Snapshot, series projection.Result, asOf time.Time) []Alert {
	found := make([]Alert, 0, 4)

	if alert, ok := firstNegativeBalance(series); ok {
		found = append(found, alert)
	}
	found = append(found, concentrationDays(snap.Payables, series)...)
	if alert, ok := overdueReceivables(snap.Receivables, asOf); ok {
		found = append(found, alert)
	}

	return found
}

// firstNegativeBalance reports the first day the projected balance dips
// below zero. Later negative days are the same underlying condition and are
// not repeated.
func firstNegativeBalance(series projection.Result) (Alert, bool) {
	for _, day := range series.Days {
		if day.Balance < 0 {
			return Alert{
				ID:       uuid.NewString(),
				Type:     TypeNegativeBalance,
				Severity: SeverityDanger,
				Date:     day.Date,
				Balance:  day.Balance,
				Message: fmt.Sprintf("Projected balance goes negative on %s (%.2f)",
					day.Date.Format("2006-01-02"), day.Balance),
			}, true
		}
	}
	return Alert{}, false
}

// concentrationDays emits one warning per horizon day with more than
// MaxPayablesPerDay distinct open payables due, deduplicated by date.
func concentrationDays(payables []domain.Payable, series projection.Result) []Alert {
	var found []Alert
	for _, day := range series.Days {
		count := projection.OpenPayablesDueOn(payables, day.Date)
		if count > MaxPayablesPerDay {
			found = append(found, Alert{
				ID:       uuid.NewString(),
				Type:     TypePaymentConcentration,
				Severity: SeverityWarning,
				Date:     day.Date,
				Count:    count,
				Message: fmt.Sprintf("%d payments concentrated on %s",
					count, day.Date.Format("2006-01-02")),
			})
		}
	}
	return found
}

// overdueReceivables folds every open receivable past its due date into one
// aggregate alert carrying the total open exposure and the record count.
func overdueReceivables(receivables []domain.Receivable, asOf time.Time) (Alert, bool) {
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	var total float64
	var count int
	for _, r := range receivables {
		if r.Class() != domain.ClassOpen || !r.HasDueDate() {
			continue
		}
		due := time.Date(r.DueDate.Year(), r.DueDate.Month(), r.DueDate.Day(), 0, 0, 0, 0, time.UTC)
		if due.Before(today) {
			total += r.OpenAmount()
			count++
		}
	}
	if count == 0 {
		return Alert{}, false
	}

	return Alert{
		ID:       uuid.NewString(),
		Type:     TypeOverdueReceivables,
		Severity: SeverityDanger,
		Date:     today,
		Amount:   total,
		Count:    count,
		Message:  fmt.Sprintf("%d overdue receivables totaling %.2f", count, total),
	}, true
}
