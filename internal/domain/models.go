// Package domain defines the ledger data model consumed by the analytics
// engine: payable and receivable records, reference dictionaries and the
// manually recorded balance snapshot.
//
// The domain layer is pure - no infrastructure dependencies. Records are
// read-only to the engine; they are created and updated exclusively by the
// ledger store's own CRUD paths.
package domain

import "time"

// Unclassified is the fallback bucket label used whenever a record carries
// no foreign key, or carries one the reference dictionaries do not cover.
// Every record must be accounted for in at least one aggregate, so grouping
// never drops a row for a missing key.
const Unclassified = "unclassified"

// Payable is a scheduled obligation to pay (accounts payable).
type Payable struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Description  string     `json:"description,omitempty"`
	Amount       float64    `json:"amount"`      // Total scheduled value, non-negative
	AmountPaid   float64    `json:"amount_paid"` // Cumulative settled amount; not trusted upstream, clamp on read
	DueDate      time.Time  `json:"due_date"`
	PaidDate     *time.Time `json:"paid_date,omitempty"` // Present only when settled
	Status       string     `json:"status"`              // Raw tenant label, normalized via Class()
	CostCenterID string     `json:"cost_center_id,omitempty"`
	CategoryID   string     `json:"category_id,omitempty"`
	ProjectID    string     `json:"project_id,omitempty"`
}

// Receivable is a scheduled inflow (accounts receivable). Structurally the
// mirror of Payable with the opposite sign of cash effect.
type Receivable struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Description string     `json:"description,omitempty"`
	Amount      float64    `json:"amount"`
	AmountPaid  float64    `json:"amount_paid"`
	DueDate     time.Time  `json:"due_date"`
	PaidDate    *time.Time `json:"paid_date,omitempty"`
	Status      string     `json:"status"`
	ClientID    string     `json:"client_id,omitempty"`
	ProjectID   string     `json:"project_id,omitempty"`
}

// Client is a reference dictionary entry used for name lookups during grouping.
type Client struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// CostCenter is a reference dictionary entry used for name lookups during grouping.
type CostCenter struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// Category is a reference dictionary entry used for name lookups during grouping.
type Category struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// BalanceSnapshot is the last manually confirmed cash position for a tenant.
// A missing snapshot means a starting balance of zero.
type BalanceSnapshot struct {
	Balance    float64   `json:"balance"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Snapshot bundles everything the engine needs for one tenant: the record
// sets, the reference dictionaries and the manual balance. The caller fetches
// the pieces concurrently and hands the engine one immutable snapshot; the
// engine never fetches data itself.
type Snapshot struct {
	TenantID    string           `json:"tenant_id"`
	Payables    []Payable        `json:"payables"`
	Receivables []Receivable     `json:"receivables"`
	Clients     []Client         `json:"clients"`
	CostCenters []CostCenter     `json:"cost_centers"`
	Categories  []Category       `json:"categories"`
	Balance     *BalanceSnapshot `json:"balance,omitempty"`
}

// OpenAmount returns the open financial exposure of the payable:
// amount minus what was already settled, floored at zero. AmountPaid is not
// strictly validated upstream, so the clamp is mandatory here.
func (p Payable) OpenAmount() float64 {
	return clampOpen(p.Amount, p.AmountPaid)
}

// OpenAmount returns the open financial exposure of the receivable,
// floored at zero.
func (r Receivable) OpenAmount() float64 {
	return clampOpen(r.Amount, r.AmountPaid)
}

// Class returns the semantic settlement class for the payable's raw status.
func (p Payable) Class() SettlementClass {
	return NormalizeStatus(p.Status)
}

// Class returns the semantic settlement class for the receivable's raw status.
func (r Receivable) Class() SettlementClass {
	return NormalizeStatus(r.Status)
}

// HasDueDate reports whether the payable carries a usable due date.
// Records without one are skipped by date-bucketed computations
// (isolate-and-skip) but still participate in undated aggregates.
func (p Payable) HasDueDate() bool {
	return !p.DueDate.IsZero()
}

// HasDueDate reports whether the receivable carries a usable due date.
func (r Receivable) HasDueDate() bool {
	return !r.DueDate.IsZero()
}

// StartingBalance returns the manual balance, or zero when no snapshot was
// ever recorded.
func (s *Snapshot) StartingBalance() float64 {
	if s == nil || s.Balance == nil {
		return 0
	}
	return s.Balance.Balance
}

// ClientNames returns an ID to name lookup for grouping. Missing entries
// resolve to Unclassified at the call site.
func (s *Snapshot) ClientNames() map[string]string {
	names := make(map[string]string, len(s.Clients))
	for _, c := range s.Clients {
		names[c.ID] = c.Name
	}
	return names
}

// CostCenterNames returns an ID to name lookup for grouping.
func (s *Snapshot) CostCenterNames() map[string]string {
	names := make(map[string]string, len(s.CostCenters))
	for _, c := range s.CostCenters {
		names[c.ID] = c.Name
	}
	return names
}

// CategoryNames returns an ID to name lookup for grouping.
func (s *Snapshot) CategoryNames() map[string]string {
	names := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		names[c.ID] = c.Name
	}
	return names
}

func clampOpen(amount, paid float64) float64 {
	open := amount - paid
	if open < 0 {
		return 0
	}
	return open
}
