package concentration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func snapWithThreeClients() *domain.Snapshot {
	return &domain.Snapshot{
		Clients: []domain.Client{
			{ID: "a", Name: "Alpha"},
			{ID: "b", Name: "Beta"},
			{ID: "c", Name: "Gamma"},
		},
		Receivables: []domain.Receivable{
			{Amount: 600, ClientID: "a", DueDate: date(2026, 3, 5), Status: "open"},
			{Amount: 300, ClientID: "b", DueDate: date(2026, 3, 6), Status: "open"},
			{Amount: 100, ClientID: "c", DueDate: date(2026, 3, 7), Status: "open"},
		},
	}
}

func TestClients_SharesAndCumulative(t *testing.T) {
	// Revenue 600/300/100 over a 1000 total: shares 60/30/10,
	// cumulative 60/90/100.
	report := Clients(snapWithThreeClients(), date(2026, 3, 1))

	require.Len(t, report, 3)
	assert.Equal(t, "Alpha", report[0].ClientName)
	assert.InDelta(t, 60.0, report[0].SharePct, 1e-9)
	assert.InDelta(t, 60.0, report[0].CumulativePct, 1e-9)
	assert.InDelta(t, 30.0, report[1].SharePct, 1e-9)
	assert.InDelta(t, 90.0, report[1].CumulativePct, 1e-9)
	assert.InDelta(t, 10.0, report[2].SharePct, 1e-9)
	assert.InDelta(t, 100.0, report[2].CumulativePct, 1e-9)
}

func TestClients_CumulativeMonotonic(t *testing.T) {
	report := Clients(snapWithThreeClients(), date(2026, 3, 1))

	prev := 0.0
	for _, entry := range report {
		assert.GreaterOrEqual(t, entry.CumulativePct, prev, "Cumulative share must never decrease")
		prev = entry.CumulativePct
	}
	assert.InDelta(t, 100.0, report[len(report)-1].CumulativePct, 1e-9)
}

func TestClients_NoRevenueMeansZeroShares(t *testing.T) {
	snap := &domain.Snapshot{
		Receivables: []domain.Receivable{
			{Amount: 0, ClientID: "a", DueDate: date(2026, 3, 5), Status: "open"},
		},
	}

	report := Clients(snap, date(2026, 3, 1))
	require.Len(t, report, 1)
	assert.Equal(t, 0.0, report[0].SharePct)
	assert.Equal(t, 0.0, report[0].CumulativePct)
}

func TestClients_EmptyInput(t *testing.T) {
	assert.Empty(t, Clients(&domain.Snapshot{}, date(2026, 3, 1)))
}

func TestClients_UnknownClientFallsBack(t *testing.T) {
	snap := &domain.Snapshot{
		Receivables: []domain.Receivable{
			{Amount: 100, DueDate: date(2026, 3, 5), Status: "open"}, // No client at all
			{Amount: 50, ClientID: "ghost", DueDate: date(2026, 3, 6), Status: "open"},
		},
	}

	report := Clients(snap, date(2026, 3, 1))
	require.Len(t, report, 2)
	for _, entry := range report {
		assert.Equal(t, domain.Unclassified, entry.ClientName,
			"Missing and unknown client keys resolve to the fallback label")
	}
}

func TestClients_AvgTicket(t *testing.T) {
	snap := &domain.Snapshot{
		Clients: []domain.Client{{ID: "a", Name: "Alpha"}},
		Receivables: []domain.Receivable{
			{Amount: 300, ClientID: "a", DueDate: date(2026, 3, 5), Status: "open"},
			{Amount: 500, ClientID: "a", DueDate: date(2026, 3, 6), Status: "pago"},
		},
	}

	report := Clients(snap, date(2026, 3, 1))
	require.Len(t, report, 1)
	assert.Equal(t, 2, report[0].InvoiceCount)
	assert.InDelta(t, 400.0, report[0].AvgTicket, 1e-9)
}

func TestClients_DSO(t *testing.T) {
	asOf := date(2026, 3, 20)
	snap := &domain.Snapshot{
		Clients: []domain.Client{{ID: "a", Name: "Alpha"}},
		Receivables: []domain.Receivable{
			// Paid 10 days after due
			{Amount: 100, ClientID: "a", DueDate: date(2026, 3, 1), PaidDate: ptr(date(2026, 3, 11)), Status: "pago"},
			// Open and 4 days overdue as of the 20th
			{Amount: 100, ClientID: "a", DueDate: date(2026, 3, 16), Status: "open"},
			// Open but not yet due: does not qualify
			{Amount: 100, ClientID: "a", DueDate: date(2026, 3, 25), Status: "open"},
		},
	}

	report := Clients(snap, asOf)
	require.Len(t, report, 1)
	assert.Equal(t, 7, report[0].DSODays, "(10 + 4) / 2 qualifying records, rounded")
}

func TestClients_DSOEarlyPaymentCountsZero(t *testing.T) {
	asOf := date(2026, 3, 20)
	snap := &domain.Snapshot{
		Clients: []domain.Client{{ID: "a", Name: "Alpha"}},
		Receivables: []domain.Receivable{
			{Amount: 100, ClientID: "a", DueDate: date(2026, 3, 10), PaidDate: ptr(date(2026, 3, 2)), Status: "pago"},
		},
	}

	report := Clients(snap, asOf)
	require.Len(t, report, 1)
	assert.Equal(t, 0, report[0].DSODays)
}
