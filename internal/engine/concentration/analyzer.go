// Package concentration computes client revenue concentration (Pareto
// analysis), average ticket size, days sales outstanding and
// income-statement style breakdowns by cost center or category.
package concentration

import (
	"math"
	"sort"
	"time"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/aggregate"
)

// ClientRevenue is one client's slice of the revenue concentration report,
// ordered by contribution.
type ClientRevenue struct {
	ClientID      string  `json:"client_id,omitempty"`
	ClientName    string  `json:"client_name"`
	Revenue       float64 `json:"revenue"`
	SharePct      float64 `json:"share_pct"`
	CumulativePct float64 `json:"cumulative_pct"`
	InvoiceCount  int     `json:"invoice_count"`
	AvgTicket     float64 `json:"avg_ticket"`
	DSODays       int     `json:"dso_days"`
}

// Clients ranks clients by total billed revenue and tracks each one's share
// and running cumulative share. The cumulative column is monotonically
// non-decreasing and converges to 100% whenever total revenue is positive;
// with no revenue every share is 0.
//
// Average ticket is total billed over invoice count. DSO averages, per
// client, the settlement lag of paid receivables (due date to paid date) and
// the age of overdue open receivables (due date to asOf), rounded to whole
// days; early settlements count as zero days outstanding.
func Clients(snap *domain.Snapshot, asOf time.Time) []ClientRevenue {
	names := snap.ClientNames()

	byClient := aggregate.GroupReceivables(snap.Receivables, func(r domain.Receivable) string {
		return r.ClientID
	})

	report := make([]ClientRevenue, 0, len(byClient))
	var total float64
	for clientID, totals := range byClient {
		name := names[clientID]
		if name == "" {
			name = domain.Unclassified
		}
		if clientID == domain.Unclassified {
			// GroupReceivables already folded empty client IDs
			clientID, name = "", domain.Unclassified
		}

		entry := ClientRevenue{
			ClientID:     clientID,
			ClientName:   name,
			Revenue:      totals.Revenue,
			InvoiceCount: totals.Count,
			DSODays:      dsoDays(snap.Receivables, clientID, asOf),
		}
		if totals.Count > 0 {
			entry.AvgTicket = totals.Revenue / float64(totals.Count)
		}
		report = append(report, entry)
		total += totals.Revenue
	}

	sort.Slice(report, func(i, j int) bool {
		if report[i].Revenue != report[j].Revenue {
			return report[i].Revenue > report[j].Revenue
		}
		return report[i].ClientName < report[j].ClientName
	})

	var cumulative float64
	for i := range report {
		if total > 0 {
			report[i].SharePct = report[i].Revenue / total * 100
			cumulative += report[i].SharePct
			report[i].CumulativePct = cumulative
		}
	}

	return report
}

// dsoDays averages the outstanding days of one client's qualifying
// receivables: settlement lag for paid records, age for overdue open ones.
func dsoDays(receivables []domain.Receivable, clientID string, asOf time.Time) int {
	today := dateOnly(asOf)

	var totalDays float64
	var qualifying int
	for _, r := range receivables {
		if r.ClientID != clientID || !r.HasDueDate() {
			continue
		}

		switch r.Class() {
		case domain.ClassPaid:
			if r.PaidDate == nil {
				continue
			}
			totalDays += daysOutstanding(r.DueDate, *r.PaidDate)
			qualifying++
		case domain.ClassOpen:
			if dateOnly(r.DueDate).Before(today) {
				totalDays += daysOutstanding(r.DueDate, today)
				qualifying++
			}
		}
	}
	if qualifying == 0 {
		return 0
	}

	return int(math.Round(totalDays / float64(qualifying)))
}

// daysOutstanding is the whole-day lag from due date to settlement,
// floored at zero so early payments do not produce negative outstanding days
func daysOutstanding(due, settled time.Time) float64 {
	days := dateOnly(settled).Sub(dateOnly(due)).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
