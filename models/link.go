package models

import (
	"github.com/shopspring/decimal"
)

// PaymentLink allocates a portion of a payment's amount to one invoice.
// The link table is the arithmetic source of truth: ground truth labels are
// derived from it and may never drift from AmountApplied.
type PaymentLink struct {
	InvoiceID     string          `json:"invoice_id"`
	PaymentID     string          `json:"payment_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`

	// AdjustmentKind and AdjustmentDelta record an agreed discount or a
	// late-payment penalty explicitly, so a downstream model can tell an
	// intentional delta from rounding noise. Delta is zero otherwise.
	AdjustmentKind  AmountPattern   `json:"adjustment_kind,omitempty"`
	AdjustmentDelta decimal.Decimal `json:"adjustment_delta"`

	// CompletionPending flags a partial allocation whose residual is
	// scheduled for a later payment that is not part of this dataset.
	CompletionPending bool `json:"completion_pending"`
}

// CoverageByInvoice sums AmountApplied per invoice across a link table.
func CoverageByInvoice(links []*PaymentLink) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(links))
	for _, l := range links {
		out[l.InvoiceID] = out[l.InvoiceID].Add(l.AmountApplied)
	}
	return out
}

// AppliedByPayment sums AmountApplied per payment across a link table.
func AppliedByPayment(links []*PaymentLink) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(links))
	for _, l := range links {
		out[l.PaymentID] = out[l.PaymentID].Add(l.AmountApplied)
	}
	return out
}
