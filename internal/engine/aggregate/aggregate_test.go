package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluxohq/fluxo/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthWindow(t *testing.T) {
	asOf := date(2026, 3, 17)

	start, end := MonthWindow(asOf, 0)
	assert.Equal(t, date(2026, 3, 1), start)
	assert.Equal(t, date(2026, 4, 1), end)

	start, end = MonthWindow(asOf, -1)
	assert.Equal(t, date(2026, 2, 1), start)
	assert.Equal(t, date(2026, 3, 1), end)

	// Year boundary
	start, end = MonthWindow(date(2026, 1, 5), -1)
	assert.Equal(t, date(2025, 12, 1), start)
	assert.Equal(t, date(2026, 1, 1), end)
}

func TestRevenueInWindow_ExcludesCancelled(t *testing.T) {
	start, end := MonthWindow(date(2026, 3, 17), 0)
	receivables := []domain.Receivable{
		{Amount: 1000, DueDate: date(2026, 3, 5), Status: "open"},
		{Amount: 500, DueDate: date(2026, 3, 20), Status: "pago"},
		{Amount: 9999, DueDate: date(2026, 3, 10), Status: "cancelado"},
		{Amount: 700, DueDate: date(2026, 4, 1), Status: "open"}, // Next month, window is half-open
	}

	assert.Equal(t, 1500.0, RevenueInWindow(receivables, start, end))
}

func TestExpensesInWindow_SkipsMissingDueDates(t *testing.T) {
	start, end := MonthWindow(date(2026, 3, 17), 0)
	payables := []domain.Payable{
		{Amount: 300, DueDate: date(2026, 3, 12), Status: "aberto"},
		{Amount: 200, Status: "aberto"}, // No due date, skipped by window bucketing
	}

	assert.Equal(t, 300.0, ExpensesInWindow(payables, start, end))
}

func TestCancellationExclusion_AmountChangesNothing(t *testing.T) {
	start, end := MonthWindow(date(2026, 3, 17), 0)
	build := func(amount float64) []domain.Receivable {
		return []domain.Receivable{
			{Amount: 1000, DueDate: date(2026, 3, 5), Status: "open"},
			{Amount: amount, DueDate: date(2026, 3, 6), Status: "cancelled"},
		}
	}

	assert.Equal(t,
		RevenueInWindow(build(1), start, end),
		RevenueInWindow(build(1e9), start, end),
		"Changing a cancelled record's amount must not change any sum")
}

func TestTrailingMonths(t *testing.T) {
	snap := &domain.Snapshot{
		Receivables: []domain.Receivable{
			{Amount: 100, DueDate: date(2026, 2, 10), Status: "open"},
			{Amount: 200, DueDate: date(2026, 1, 10), Status: "open"},
		},
		Payables: []domain.Payable{
			{Amount: 50, DueDate: date(2025, 12, 10), Status: "aberto"},
		},
	}

	months := TrailingMonths(snap, date(2026, 3, 17), 3)
	assert.Len(t, months, 3)
	assert.Equal(t, date(2026, 2, 1), months[0].Start, "Most recent complete month first")
	assert.Equal(t, 100.0, months[0].Revenue)
	assert.Equal(t, 200.0, months[1].Revenue)
	assert.Equal(t, 50.0, months[2].Expenses)
}

func TestGroupPayables_FallbackLabel(t *testing.T) {
	payables := []domain.Payable{
		{Amount: 400, Status: "open", CategoryID: "cat1"},
		{Amount: 100, Status: "open"}, // No category
		{Amount: 9999, Status: "cancelled", CategoryID: "cat1"},
	}
	names := map[string]string{"cat1": "Ops"}

	groups := GroupPayables(payables, func(p domain.Payable) string {
		return names[p.CategoryID]
	})

	assert.Equal(t, 400.0, groups["Ops"].Expenses)
	assert.Equal(t, 1, groups["Ops"].Count)
	assert.Equal(t, 100.0, groups[domain.Unclassified].Expenses, "Null keys land in the fallback bucket")
	assert.Len(t, groups, 2)
}

func TestGroupReceivables_EmptyInput(t *testing.T) {
	groups := GroupReceivables(nil, func(r domain.Receivable) string { return r.ClientID })
	assert.Empty(t, groups, "Empty input yields an empty result, not an error")
}
