// Package aggregate buckets ledger records by calendar month windows and by
// arbitrary grouping keys. It is the basis for every downstream computation
// in the analytics engine: KPIs, simulations and breakdowns all start from
// these sums.
//
// All functions are pure and deterministic. Cancelled records contribute to
// no sum; records without a usable due date are skipped by window bucketing.
package aggregate

import (
	"time"

	"github.com/fluxohq/fluxo/internal/domain"
)

// Totals holds grouped revenue/expense sums and the record count behind them.
type Totals struct {
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Count    int     `json:"count"`
}

// MonthTotals holds the revenue and expense sums for one calendar month.
type MonthTotals struct {
	Start    time.Time `json:"start"` // First day of the month, UTC midnight
	Revenue  float64   `json:"revenue"`
	Expenses float64   `json:"expenses"`
}

// MonthWindow returns the calendar-month window containing asOf shifted by
// offsetMonths (0 = current month, -1 = previous month). The start is the
// first day of the month at UTC midnight, the end is the first day of the
// following month; windows are [start, end).
func MonthWindow(asOf time.Time, offsetMonths int) (time.Time, time.Time) {
	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	start = start.AddDate(0, offsetMonths, 0)
	end := start.AddDate(0, 1, 0)
	return start, end
}

// RevenueInWindow sums receivable amounts due inside [start, end),
// excluding cancelled records.
func RevenueInWindow(receivables []domain.Receivable, start, end time.Time) float64 {
	var total float64
	for _, r := range receivables {
		if r.Class() == domain.ClassCancelled || !r.HasDueDate() {
			continue
		}
		if inWindow(r.DueDate, start, end) {
			total += r.Amount
		}
	}
	return total
}

// ExpensesInWindow sums payable amounts due inside [start, end),
// excluding cancelled records.
func ExpensesInWindow(payables []domain.Payable, start, end time.Time) float64 {
	var total float64
	for _, p := range payables {
		if p.Class() == domain.ClassCancelled || !p.HasDueDate() {
			continue
		}
		if inWindow(p.DueDate, start, end) {
			total += p.Amount
		}
	}
	return total
}

// TrailingMonths returns totals for the n complete calendar months before the
// month containing asOf, most recent first. Element 0 covers last month.
func TrailingMonths(snap *domain.Snapshot, asOf time.Time, n int) []MonthTotals {
	months := make([]MonthTotals, 0, n)
	for i := 1; i <= n; i++ {
		start, end := MonthWindow(asOf, -i)
		months = append(months, MonthTotals{
			Start:    start,
			Revenue:  RevenueInWindow(snap.Receivables, start, end),
			Expenses: ExpensesInWindow(snap.Payables, start, end),
		})
	}
	return months
}

// GroupPayables groups non-cancelled payables by the given key function,
// accumulating expense totals. An empty key falls back to the unclassified
// bucket so every record lands in exactly one group.
func GroupPayables(payables []domain.Payable, keyOf func(domain.Payable) string) map[string]Totals {
	groups := make(map[string]Totals)
	for _, p := range payables {
		if p.Class() == domain.ClassCancelled {
			continue
		}
		key := keyOf(p)
		if key == "" {
			key = domain.Unclassified
		}
		t := groups[key]
		t.Expenses += p.Amount
		t.Count++
		groups[key] = t
	}
	return groups
}

// GroupReceivables groups non-cancelled receivables by the given key function,
// accumulating revenue totals. An empty key falls back to the unclassified
// bucket.
func GroupReceivables(receivables []domain.Receivable, keyOf func(domain.Receivable) string) map[string]Totals {
	groups := make(map[string]Totals)
	for _, r := range receivables {
		if r.Class() == domain.ClassCancelled {
			continue
		}
		key := keyOf(r)
		if key == "" {
			key = domain.Unclassified
		}
		t := groups[key]
		t.Revenue += r.Amount
		t.Count++
		groups[key] = t
	}
	return groups
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
