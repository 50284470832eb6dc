// Package kpi computes point-in-time executive metrics for one tenant
// snapshot: monthly revenue and expenses, net margin, burn rate, runway,
// current cash and month-over-month variations.
//
// Every function takes an explicit asOf date instead of reading the wall
// clock, so results are deterministic and back-dated analysis works.
package kpi

import (
	"encoding/json"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/aggregate"
)

// BurnRateTrailingMonths is how many complete months feed the burn rate.
const BurnRateTrailingMonths = 3

// Months is a duration expressed in months that may be infinite.
// Infinite values (runway with zero burn) serialize as JSON null, since
// IEEE infinities are not representable in JSON.
type Months float64

// MarshalJSON emits null for an infinite number of months
func (m Months) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// IsInfinite reports whether the value represents unbounded runway
func (m Months) IsInfinite() bool {
	return math.IsInf(float64(m), 1)
}

// Metrics is the executive KPI record for one snapshot at one reference date.
type Metrics struct {
	AsOf time.Time `json:"as_of"`

	MonthRevenue  float64 `json:"month_revenue"`
	MonthExpenses float64 `json:"month_expenses"`
	NetMarginPct  float64 `json:"net_margin_pct"`

	PrevMonthRevenue  float64 `json:"prev_month_revenue"`
	PrevMonthExpenses float64 `json:"prev_month_expenses"`
	PrevNetMarginPct  float64 `json:"prev_net_margin_pct"`

	CurrentCash float64 `json:"current_cash"`
	BurnRate    float64 `json:"burn_rate"`
	Runway      Months  `json:"runway_months"`

	RevenueVariationPct  float64 `json:"revenue_variation_pct"`
	ExpensesVariationPct float64 `json:"expenses_variation_pct"`
	MarginVariationPct   float64 `json:"margin_variation_pct"`
	BurnRateVariationPct float64 `json:"burn_rate_variation_pct"`

	Health map[string]Status `json:"health"`
}

// Compute builds the full KPI record for the snapshot at asOf.
func Compute(snap *domain.Snapshot, asOf time.Time) Metrics {
	curStart, curEnd := aggregate.MonthWindow(asOf, 0)
	prevStart, prevEnd := aggregate.MonthWindow(asOf, -1)

	m := Metrics{AsOf: asOf, Health: make(map[string]Status, 4)}

	m.MonthRevenue = aggregate.RevenueInWindow(snap.Receivables, curStart, curEnd)
	m.MonthExpenses = aggregate.ExpensesInWindow(snap.Payables, curStart, curEnd)
	m.NetMarginPct = netMarginPct(m.MonthRevenue, m.MonthExpenses)

	m.PrevMonthRevenue = aggregate.RevenueInWindow(snap.Receivables, prevStart, prevEnd)
	m.PrevMonthExpenses = aggregate.ExpensesInWindow(snap.Payables, prevStart, prevEnd)
	m.PrevNetMarginPct = netMarginPct(m.PrevMonthRevenue, m.PrevMonthExpenses)

	m.CurrentCash = CurrentCash(snap)
	m.BurnRate = BurnRate(snap, asOf)
	m.Runway = Runway(m.CurrentCash, m.BurnRate)

	m.RevenueVariationPct = pctChange(m.MonthRevenue, m.PrevMonthRevenue)
	m.ExpensesVariationPct = pctChange(m.MonthExpenses, m.PrevMonthExpenses)
	m.MarginVariationPct = pctChange(m.NetMarginPct, m.PrevNetMarginPct)
	m.BurnRateVariationPct = m.ExpensesVariationPct

	m.Health[MetricCash] = HealthOf(MetricCash, m.CurrentCash)
	m.Health[MetricMargin] = HealthOf(MetricMargin, m.NetMarginPct)
	m.Health[MetricRunway] = HealthOf(MetricRunway, float64(m.Runway))
	m.Health[MetricBurnRate] = HealthOf(MetricBurnRate, m.BurnRateVariationPct)

	return m
}

// CurrentCash reconstructs the realized cash position: the manual starting
// balance plus every paid receivable and minus every paid payable, at full
// amount (not AmountPaid, to avoid double counting partial settlement
// history).
func CurrentCash(snap *domain.Snapshot) float64 {
	cash := snap.StartingBalance()
	for _, r := range snap.Receivables {
		if r.Class() == domain.ClassPaid {
			cash += r.Amount
		}
	}
	for _, p := range snap.Payables {
		if p.Class() == domain.ClassPaid {
			cash -= p.Amount
		}
	}
	return cash
}

// BurnRate averages monthly expense totals over the trailing complete months
// that had nonzero expense. When no trailing month qualifies it falls back
// to the current month's expenses.
func BurnRate(snap *domain.Snapshot, asOf time.Time) float64 {
	months := aggregate.TrailingMonths(snap, asOf, BurnRateTrailingMonths)

	nonzero := make([]float64, 0, len(months))
	for _, month := range months {
		if month.Expenses > 0 {
			nonzero = append(nonzero, month.Expenses)
		}
	}
	if len(nonzero) == 0 {
		curStart, curEnd := aggregate.MonthWindow(asOf, 0)
		return aggregate.ExpensesInWindow(snap.Payables, curStart, curEnd)
	}

	return stat.Mean(nonzero, nil)
}

// Runway is the number of months of operation remaining at the current
// spend, infinite when there is no burn.
func Runway(currentCash, burnRate float64) Months {
	if burnRate == 0 {
		return Months(math.Inf(1))
	}
	return Months(currentCash / burnRate)
}

// netMarginPct is (revenue - expenses) / revenue in percent, zero when there
// is no revenue
func netMarginPct(revenue, expenses float64) float64 {
	if revenue == 0 {
		return 0
	}
	return (revenue - expenses) / revenue * 100
}

// pctChange is (current - previous) / previous in percent, zero when there
// is no previous value to compare against
func pctChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
