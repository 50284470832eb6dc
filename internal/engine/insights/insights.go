// Package insights composes the outputs of the analytics engine into a
// small, severity-ranked list of natural-language findings for the
// dashboard's narrative feed.
//
// Each rule is pure and independently evaluable; given identical inputs the
// engine returns an identical ranked list, with no hidden state between
// calls.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/aggregate"
	"github.com/fluxohq/fluxo/internal/engine/concentration"
	"github.com/fluxohq/fluxo/internal/engine/kpi"
	"github.com/fluxohq/fluxo/internal/engine/projection"
)

// Severity ranks a finding. The sort order is fixed:
// danger < warning < info < success.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

var severityRank = map[Severity]int{
	SeverityDanger:  0,
	SeverityWarning: 1,
	SeverityInfo:    2,
	SeveritySuccess: 3,
}

// Rule thresholds and limits. Fixed in this version.
const (
	MaxInsights         = 5
	CashRiskHorizonDays = 90
	TopClientsPct       = 60.0 // Top-2 client revenue share above this is a dependency risk
	OverdueSharePct     = 10.0 // Overdue share of open receivables above this fires
	BurnIncreasePct     = 10.0 // Burn growth above this fires
	MarginTrendMonths   = 3
)

// Insight is one ranked narrative finding.
type Insight struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// ruleContext carries the precomputed engine outputs every rule reads from.
type ruleContext struct {
	snap      *domain.Snapshot
	asOf      time.Time
	metrics   kpi.Metrics
	series    projection.Result
	clients   []concentration.ClientRevenue
	costLines []concentration.Line
	margins   []float64 // Net margin for the last MarginTrendMonths months, oldest first
}

// rule evaluates one finding; nil means the rule does not fire.
type rule func(ctx ruleContext) *Insight

var rules = []rule{
	cashRiskRule,
	marginTrendRule,
	burnIncreaseRule,
	clientConcentrationRule,
	overdueShareRule,
	bestCostCenterRule,
}

// Generate runs every rule over the snapshot, sorts the findings by
// severity and truncates to the top MaxInsights.
func Generate(snap *domain.Snapshot, asOf time.Time) []Insight {
	ctx := ruleContext{
		snap:      snap,
		asOf:      asOf,
		metrics:   kpi.Compute(snap, asOf),
		series:    projection.Project(snap, asOf, CashRiskHorizonDays),
		clients:   concentration.Clients(snap, asOf),
		costLines: concentration.BreakdownByCostCenter(snap),
		margins:   trailingMargins(snap, asOf, MarginTrendMonths),
	}

	found := make([]Insight, 0, len(rules))
	for _, r := range rules {
		if insight := r(ctx); insight != nil {
			insight.ID = uuid.NewString()
			found = append(found, *insight)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return severityRank[found[i].Severity] < severityRank[found[j].Severity]
	})
	if len(found) > MaxInsights {
		found = found[:MaxInsights]
	}

	return found
}

// trailingMargins computes the net margin for the last n months including
// the current one, oldest first.
func trailingMargins(snap *domain.Snapshot, asOf time.Time, n int) []float64 {
	margins := make([]float64, 0, n)
	for offset := -(n - 1); offset <= 0; offset++ {
		start, end := aggregate.MonthWindow(asOf, offset)
		revenue := aggregate.RevenueInWindow(snap.Receivables, start, end)
		expenses := aggregate.ExpensesInWindow(snap.Payables, start, end)
		if revenue == 0 {
			margins = append(margins, 0)
			continue
		}
		margins = append(margins, (revenue-expenses)/revenue*100)
	}
	return margins
}

// cashRiskRule flags the first projected negative-balance day inside the
// 90-day risk horizon.
func cashRiskRule(ctx ruleContext) *Insight {
	for _, day := range ctx.series.Days {
		if day.Balance < 0 {
			return &Insight{
				Type:     "cash_risk",
				Severity: SeverityDanger,
				Title:    "Projected cash shortfall",
				Message: fmt.Sprintf("Balance is projected to go negative on %s (%.2f) within the next %d days",
					day.Date.Format("2006-01-02"), day.Balance, CashRiskHorizonDays),
			}
		}
	}
	return nil
}

// marginTrendRule reports a consistent margin direction across the trailing
// months: three rising months is a success finding, three falling months a
// warning.
func marginTrendRule(ctx ruleContext) *Insight {
	m := ctx.margins
	if len(m) < MarginTrendMonths {
		return nil
	}

	rising, falling := true, true
	for i := 1; i < len(m); i++ {
		if m[i] <= m[i-1] {
			rising = false
		}
		if m[i] >= m[i-1] {
			falling = false
		}
	}

	if rising {
		return &Insight{
			Type:     "margin_trend",
			Severity: SeveritySuccess,
			Title:    "Margin improving",
			Message: fmt.Sprintf("Net margin has risen for %d consecutive months, now at %.1f%%",
				MarginTrendMonths, m[len(m)-1]),
		}
	}
	if falling {
		return &Insight{
			Type:     "margin_trend",
			Severity: SeverityWarning,
			Title:    "Margin declining",
			Message: fmt.Sprintf("Net margin has fallen for %d consecutive months, now at %.1f%%",
				MarginTrendMonths, m[len(m)-1]),
		}
	}
	return nil
}

// burnIncreaseRule fires when the burn variation exceeds the threshold.
func burnIncreaseRule(ctx ruleContext) *Insight {
	variation := ctx.metrics.BurnRateVariationPct
	if variation <= BurnIncreasePct {
		return nil
	}
	return &Insight{
		Type:     "burn_increase",
		Severity: SeverityWarning,
		Title:    "Burn rate accelerating",
		Message:  fmt.Sprintf("Monthly spend grew %.1f%% over the previous month", variation),
	}
}

// clientConcentrationRule fires when the top two clients hold more than the
// threshold share of revenue.
func clientConcentrationRule(ctx ruleContext) *Insight {
	var topShare float64
	var names []string
	for i, client := range ctx.clients {
		if i >= 2 {
			break
		}
		topShare += client.SharePct
		names = append(names, client.ClientName)
	}
	if topShare <= TopClientsPct {
		return nil
	}
	return &Insight{
		Type:     "client_concentration",
		Severity: SeverityWarning,
		Title:    "Revenue concentrated in few clients",
		Message: fmt.Sprintf("%.1f%% of revenue comes from %d clients (%s)",
			topShare, len(names), joinNames(names)),
	}
}

// overdueShareRule fires when overdue exposure exceeds the threshold share
// of all open receivables.
func overdueShareRule(ctx ruleContext) *Insight {
	today := time.Date(ctx.asOf.Year(), ctx.asOf.Month(), ctx.asOf.Day(), 0, 0, 0, 0, time.UTC)

	var open, overdue float64
	for _, r := range ctx.snap.Receivables {
		if r.Class() != domain.ClassOpen {
			continue
		}
		amount := r.OpenAmount()
		open += amount
		if r.HasDueDate() && r.DueDate.Before(today) {
			overdue += amount
		}
	}
	if open == 0 {
		return nil
	}

	share := overdue / open * 100
	if share <= OverdueSharePct {
		return nil
	}
	return &Insight{
		Type:     "overdue_share",
		Severity: SeverityWarning,
		Title:    "Receivables aging",
		Message:  fmt.Sprintf("%.1f%% of open receivables are past due (%.2f)", share, overdue),
	}
}

// bestCostCenterRule highlights the cost center with the highest margin,
// provided it actually books revenue.
func bestCostCenterRule(ctx ruleContext) *Insight {
	var best *concentration.Line
	for i := range ctx.costLines {
		line := &ctx.costLines[i]
		if line.Name == concentration.GeneralRevenueLine || line.Revenue <= 0 {
			continue
		}
		if best == nil || line.Margin > best.Margin {
			best = line
		}
	}
	if best == nil {
		return nil
	}
	return &Insight{
		Type:     "best_cost_center",
		Severity: SeverityInfo,
		Title:    "Best performing cost center",
		Message: fmt.Sprintf("%s leads with a margin of %.2f (%.1f%%)",
			best.Name, best.Margin, best.MarginPct),
	}
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return names[0] + ", " + names[1]
	}
}
