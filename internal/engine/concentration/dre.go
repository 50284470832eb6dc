package concentration

import (
	"sort"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/aggregate"
)

// GeneralRevenueLine is the DRE line that collects revenue not attributed to
// any cost center. The label is the fixed heading tenants expect on the
// income statement.
const GeneralRevenueLine = "Receitas"

// Line is one row of the income-statement style breakdown.
type Line struct {
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	Margin    float64 `json:"margin"`
	MarginPct float64 `json:"margin_pct"`
}

// BreakdownByCostCenter groups expenses by cost center and attributes
// revenue to a cost center when a receivable's project matches a payable's
// project that itself carries a cost center. Attribution is best effort: a
// project with payables across several cost centers resolves to the cost
// center of its earliest-due payable, and unattributed revenue falls into
// the general revenue line.
func BreakdownByCostCenter(snap *domain.Snapshot) []Line {
	names := snap.CostCenterNames()

	expenses := aggregate.GroupPayables(snap.Payables, func(p domain.Payable) string {
		return names[p.CostCenterID]
	})

	projectCenters := projectCostCenters(snap.Payables, names)

	revenue := aggregate.GroupReceivables(snap.Receivables, func(r domain.Receivable) string {
		if center, ok := projectCenters[r.ProjectID]; ok && r.ProjectID != "" {
			return center
		}
		return GeneralRevenueLine
	})

	return assembleLines(revenue, expenses)
}

// BreakdownByCategory groups expenses by category. Categories exist only on
// payables, so all revenue lands in the general revenue line.
func BreakdownByCategory(snap *domain.Snapshot) []Line {
	names := snap.CategoryNames()

	expenses := aggregate.GroupPayables(snap.Payables, func(p domain.Payable) string {
		return names[p.CategoryID]
	})

	revenue := aggregate.GroupReceivables(snap.Receivables, func(r domain.Receivable) string {
		return GeneralRevenueLine
	})

	return assembleLines(revenue, expenses)
}

// projectCostCenters resolves each project ID to one cost center name using
// the project's earliest-due payable that carries a cost center. The
// earliest-due tie-break keeps the attribution deterministic, but a project
// spanning multiple cost centers can still be misattributed; the upstream
// data model has no authoritative mapping.
func projectCostCenters(payables []domain.Payable, names map[string]string) map[string]string {
	best := make(map[string]domain.Payable)
	for _, p := range payables {
		if p.Class() == domain.ClassCancelled || p.ProjectID == "" || p.CostCenterID == "" {
			continue
		}
		if names[p.CostCenterID] == "" {
			continue
		}
		current, seen := best[p.ProjectID]
		if !seen || (p.HasDueDate() && (!current.HasDueDate() || p.DueDate.Before(current.DueDate))) {
			best[p.ProjectID] = p
		}
	}

	centers := make(map[string]string, len(best))
	for projectID, p := range best {
		centers[projectID] = names[p.CostCenterID]
	}
	return centers
}

// assembleLines merges the revenue and expense groupings into sorted DRE
// lines. The general revenue line comes first; the remaining lines sort by
// expenses descending with name as tie-break.
func assembleLines(revenue, expenses map[string]aggregate.Totals) []Line {
	merged := make(map[string]Line)
	for name, totals := range revenue {
		line := merged[name]
		line.Name = name
		line.Revenue += totals.Revenue
		merged[name] = line
	}
	for name, totals := range expenses {
		line := merged[name]
		line.Name = name
		line.Expenses += totals.Expenses
		merged[name] = line
	}

	lines := make([]Line, 0, len(merged))
	for _, line := range merged {
		line.Margin = line.Revenue - line.Expenses
		line.MarginPct = marginPct(line.Revenue, line.Expenses)
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if (lines[i].Name == GeneralRevenueLine) != (lines[j].Name == GeneralRevenueLine) {
			return lines[i].Name == GeneralRevenueLine
		}
		if lines[i].Expenses != lines[j].Expenses {
			return lines[i].Expenses > lines[j].Expenses
		}
		return lines[i].Name < lines[j].Name
	})

	return lines
}

// marginPct is margin over revenue in percent when there is revenue; a line
// with expenses but no revenue reads -100%, and an empty line reads 0
func marginPct(revenue, expenses float64) float64 {
	if revenue > 0 {
		return (revenue - expenses) / revenue * 100
	}
	if expenses > 0 {
		return -100
	}
	return 0
}
