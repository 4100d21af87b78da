package models

import (
	"github.com/shopspring/decimal"
)

// GroundTruthLabel is the authoritative record of how one payment relates to
// one invoice. One label exists per committed link, plus explicit unrelated
// labels for decoy pairs that must not be matched.
type GroundTruthLabel struct {
	InvoiceID string    `json:"invoice_id"`
	PaymentID string    `json:"payment_id"`
	MatchType MatchType `json:"match_type"`
	// Confidence is a deterministic function of the corruption applied to
	// the pair, in [0,1]. It is reproducible from the run seed.
	Confidence float64 `json:"confidence"`
	// AmountCovered equals the link's AmountApplied exactly. Labels are a
	// derived view of the link table, never independently authored.
	AmountCovered decimal.Decimal `json:"amount_covered"`
	Rationale     string          `json:"rationale"`
}
