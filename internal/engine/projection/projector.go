// Package projection walks a day-by-day horizon from a caller-supplied
// reference date, combining the already-realized balance with scheduled
// inflows and outflows into a running balance series.
//
// The series is a left-to-right prefix sum: balance(i) equals
// balance(i-1) + inflows(i) - outflows(i), with balance(-1) being the seeded
// realized balance. Two invocations with identical inputs produce identical
// output - there is no randomness and no wall-clock read.
package projection

import (
	"time"

	"github.com/fluxohq/fluxo/internal/domain"
)

// DefaultHorizonDays is the projection horizon used when the caller does not
// supply one.
const DefaultHorizonDays = 30

// Day is one step of the projected series.
type Day struct {
	Date     time.Time `json:"date"`
	Inflows  float64   `json:"inflows"`
	Outflows float64   `json:"outflows"`
	Balance  float64   `json:"balance"`
}

// Result is the projected cash-flow series for one tenant snapshot.
type Result struct {
	SeededBalance float64 `json:"seeded_balance"` // Realized balance entering day 0
	Days          []Day   `json:"days"`
}

// Project computes the running balance series over horizonDays starting at
// asOf (day 0). A non-positive horizon falls back to DefaultHorizonDays.
//
// The seed reconstructs the realized trajectory behind the manual balance:
// the recorded starting balance, plus every paid receivable and minus every
// paid payable settled strictly before asOf, at full amount. Open records
// contribute their clamped open exposure on their due date; cancelled
// records contribute nothing anywhere.
func Project(snap *domain.Snapshot, asOf time.Time, horizonDays int) Result {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	today := dateOnly(asOf)

	running := snap.StartingBalance()
	for _, r := range snap.Receivables {
		if r.Class() == domain.ClassPaid && settledBefore(r.PaidDate, today) {
			running += r.Amount
		}
	}
	for _, p := range snap.Payables {
		if p.Class() == domain.ClassPaid && settledBefore(p.PaidDate, today) {
			running -= p.Amount
		}
	}
	seeded := running

	// Index open exposure by due date so the horizon walk is a lookup
	inflows := make(map[time.Time]float64)
	for _, r := range snap.Receivables {
		if r.Class() != domain.ClassOpen || !r.HasDueDate() {
			continue
		}
		inflows[dateOnly(r.DueDate)] += r.OpenAmount()
	}
	outflows := make(map[time.Time]float64)
	for _, p := range snap.Payables {
		if p.Class() != domain.ClassOpen || !p.HasDueDate() {
			continue
		}
		outflows[dateOnly(p.DueDate)] += p.OpenAmount()
	}

	days := make([]Day, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		date := today.AddDate(0, 0, i)
		in := inflows[date]
		out := outflows[date]
		running += in - out
		days = append(days, Day{
			Date:     date,
			Inflows:  in,
			Outflows: out,
			Balance:  running,
		})
	}

	return Result{SeededBalance: seeded, Days: days}
}

// OpenPayablesDueOn counts distinct open payables due on the given calendar
// day. Used by the alert generator's payment-concentration rule.
func OpenPayablesDueOn(payables []domain.Payable, date time.Time) int {
	day := dateOnly(date)
	count := 0
	for _, p := range payables {
		if p.Class() != domain.ClassOpen || !p.HasDueDate() {
			continue
		}
		if dateOnly(p.DueDate).Equal(day) {
			count++
		}
	}
	return count
}

func settledBefore(paidDate *time.Time, today time.Time) bool {
	if paidDate == nil {
		return false
	}
	return dateOnly(*paidDate).Before(today)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
