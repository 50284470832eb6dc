package domain

import "strings"

// SettlementClass is the semantic settlement state of a record.
// Tenants use a soft taxonomy of status labels that differs between payables
// and receivables ("aberto", "emitido", "pendente" all mean open); the labels
// collapse into three classes at ingestion so downstream computations never
// re-check raw strings.
type SettlementClass int

const (
	// ClassOpen counts toward future obligations
	ClassOpen SettlementClass = iota
	// ClassPaid counts as realized cash movement
	ClassPaid
	// ClassCancelled is excluded from every sum
	ClassCancelled
)

// String returns the class name for logging and JSON output
func (c SettlementClass) String() string {
	switch c {
	case ClassPaid:
		return "paid"
	case ClassCancelled:
		return "cancelled"
	default:
		return "open"
	}
}

// statusClasses maps every known tenant status label (both directions,
// Portuguese and English variants) to its settlement class. Labels are
// matched lowercase.
var statusClasses = map[string]SettlementClass{
	// Open class: scheduled, not yet settled
	"open":             ClassOpen,
	"aberto":           ClassOpen,
	"partial":          ClassOpen,
	"parcial":          ClassOpen,
	"overdue":          ClassOpen,
	"vencido":          ClassOpen,
	"atrasado":         ClassOpen,
	"approved":         ClassOpen,
	"aprovado":         ClassOpen,
	"issued":           ClassOpen,
	"emitido":          ClassOpen,
	"pending":          ClassOpen,
	"pendente":         ClassOpen,
	"pending-approval": ClassOpen,
	"draft":            ClassOpen,
	"rascunho":         ClassOpen,

	// Paid class: settled cash movement
	"paid":     ClassPaid,
	"pago":     ClassPaid,
	"received": ClassPaid,
	"recebido": ClassPaid,

	// Cancelled class: excluded everywhere
	"cancelled": ClassCancelled,
	"canceled":  ClassCancelled,
	"cancelado": ClassCancelled,
	"estornado": ClassCancelled,
}

// NormalizeStatus folds a raw tenant status label into its settlement class.
// Unknown labels default to open: treating an unrecognized record as a live
// obligation is the safe direction for projections and alerts.
func NormalizeStatus(status string) SettlementClass {
	if class, ok := statusClasses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return class
	}
	return ClassOpen
}
