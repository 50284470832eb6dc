// Package simulation applies what-if parameters to a trailing revenue and
// expense baseline and projects the balance six monthly periods forward.
//
// With all parameters at zero the result reduces exactly to the unmodified
// trailing-average baseline, which keeps the simulator testable against the
// projection it perturbs.
package simulation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/aggregate"
	"github.com/fluxohq/fluxo/internal/engine/kpi"
)

const (
	// BaselineMonths is the trailing window the baseline averages over.
	BaselineMonths = 3
	// ForwardPeriods is how many monthly periods the simulation projects.
	ForwardPeriods = 6
)

// Params are the user-supplied what-if percentages. All accept values past
// 100; no upper bound is enforced.
type Params struct {
	ReceivablesDelayPct float64 `json:"receivables_delay_pct"`
	ExpenseCutPct       float64 `json:"expense_cut_pct"`
	RevenueGrowthPct    float64 `json:"revenue_growth_pct"`
}

// Period is one projected month of the simulation trace.
type Period struct {
	Index    int       `json:"index"` // 1-based forward month
	Start    time.Time `json:"start"`
	Revenue  float64   `json:"revenue"`
	Expenses float64   `json:"expenses"`
	Balance  float64   `json:"balance"`
}

// Result is the simulation outcome.
type Result struct {
	Params Params `json:"params"`

	BaselineRevenue  float64 `json:"baseline_revenue"`  // Trailing average monthly revenue
	BaselineExpenses float64 `json:"baseline_expenses"` // Trailing average monthly expenses

	SimulatedRevenue  float64 `json:"simulated_revenue"` // After growth and delay
	SimulatedExpenses float64 `json:"simulated_expenses"`

	StartingBalance    float64    `json:"starting_balance"` // Realized cash entering period 1
	FinalBalance       float64    `json:"final_balance"`
	RunwayMonths       kpi.Months `json:"runway_months"`
	ProjectedMarginPct float64    `json:"projected_margin_pct"`

	Periods []Period `json:"periods"`
}

// Simulate projects ForwardPeriods monthly periods from the realized current
// balance, each period applying the parameterized revenue and expense:
//
//	simRevenue     = avgRevenue x (1 + growth/100)
//	delayedRevenue = simRevenue x (1 - delay/100)
//	simExpenses    = avgExpenses x (1 - cut/100)
func Simulate(snap *domain.Snapshot, asOf time.Time, params Params) Result {
	avgRevenue, avgExpenses := Baseline(snap, asOf)

	simRevenue := avgRevenue * (1 + params.RevenueGrowthPct/100)
	delayedRevenue := simRevenue * (1 - params.ReceivablesDelayPct/100)
	simExpenses := avgExpenses * (1 - params.ExpenseCutPct/100)

	balance := kpi.CurrentCash(snap)
	result := Result{
		Params:            params,
		BaselineRevenue:   avgRevenue,
		BaselineExpenses:  avgExpenses,
		SimulatedRevenue:  delayedRevenue,
		SimulatedExpenses: simExpenses,
		StartingBalance:   balance,
		Periods:           make([]Period, 0, ForwardPeriods),
	}

	for i := 1; i <= ForwardPeriods; i++ {
		start, _ := aggregate.MonthWindow(asOf, i)
		balance += delayedRevenue - simExpenses
		result.Periods = append(result.Periods, Period{
			Index:    i,
			Start:    start,
			Revenue:  delayedRevenue,
			Expenses: simExpenses,
			Balance:  balance,
		})
	}

	result.FinalBalance = balance
	result.RunwayMonths = kpi.Runway(result.StartingBalance, simExpenses)
	result.ProjectedMarginPct = projectedMargin(delayedRevenue, simExpenses)

	return result
}

// Baseline averages revenue and expenses over the trailing complete months.
// Months with no activity still count toward the average: the baseline is
// the plain mean of the window, unlike the burn rate which skips zero
// months.
func Baseline(snap *domain.Snapshot, asOf time.Time) (avgRevenue, avgExpenses float64) {
	months := aggregate.TrailingMonths(snap, asOf, BaselineMonths)

	revenues := make([]float64, len(months))
	expenses := make([]float64, len(months))
	for i, month := range months {
		revenues[i] = month.Revenue
		expenses[i] = month.Expenses
	}

	return stat.Mean(revenues, nil), stat.Mean(expenses, nil)
}

func projectedMargin(revenue, expenses float64) float64 {
	if revenue == 0 {
		return 0
	}
	margin := (revenue - expenses) / revenue * 100
	if math.IsNaN(margin) {
		return 0
	}
	return margin
}
