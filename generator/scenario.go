package generator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/models"
)

type pairKey struct {
	InvoiceID string
	PaymentID string
}

// Scenario is one committed scenario instance: the entities it owns, the
// links between them and the derived labels. Scenarios own disjoint entity
// pools; nothing here is shared with another scenario.
type Scenario struct {
	Slot       int
	Block      string
	SubPattern string

	Cardinality models.Cardinality
	Timing      models.TimingPattern
	Amount      models.AmountPattern
	Quality     models.QualityLevel
	Holdout     bool
	Retries     int

	Invoices []*models.Invoice
	Payments []*models.Payment
	Links    []*models.PaymentLink
	Labels   []*models.GroundTruthLabel

	// notes carries per-pair rationale hints from the relation builder to
	// the ground truth synthesizer.
	notes map[pairKey]string
	// corruption counts noise transformations per pair; confidence is a
	// deterministic function of it.
	corruption map[pairKey]int
	// fuzzyAmounts marks pairs whose reconciliation needed tolerance
	// beyond the cent (group allocations, discounts).
	fuzzyAmounts map[pairKey]bool
	// decoyPairs are (invoice, payment) pairs that must be labeled
	// unrelated: plausible but wrong candidates.
	decoyPairs []pairKey
	decoyNotes map[pairKey]string

	TextFallbacks int
	// InvoiceRefs counts payments whose causale names the invoice(s) it
	// pays. A dataset statistic: explicit references make matching easier.
	InvoiceRefs int
}

func newScenario(slot int, block, sub string) *Scenario {
	return &Scenario{
		Slot:         slot,
		Block:        block,
		SubPattern:   sub,
		notes:        map[pairKey]string{},
		corruption:   map[pairKey]int{},
		fuzzyAmounts: map[pairKey]bool{},
		decoyNotes:   map[pairKey]string{},
	}
}

func (s *Scenario) note(invoiceID, paymentID, text string) {
	s.notes[pairKey{invoiceID, paymentID}] = text
}

func (s *Scenario) corrupt(invoiceID, paymentID string, n int) {
	s.corruption[pairKey{invoiceID, paymentID}] += n
}

func (s *Scenario) markFuzzy(invoiceID, paymentID string) {
	s.fuzzyAmounts[pairKey{invoiceID, paymentID}] = true
}

func (s *Scenario) addDecoyPair(invoiceID, paymentID, note string) {
	k := pairKey{invoiceID, paymentID}
	s.decoyPairs = append(s.decoyPairs, k)
	s.decoyNotes[k] = note
}

func (s *Scenario) invoiceByID(id string) *models.Invoice {
	for _, inv := range s.Invoices {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

func (s *Scenario) paymentByID(id string) *models.Payment {
	for _, p := range s.Payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// excessCap bounds how far an overpayment may exceed the invoice gross.
var excessCap = decimal.NewFromFloat(1.5)

// checkConsistency verifies every structural invariant of the scenario:
// entity sanity, payment conservation, invoice coverage bounds and the
// label/link equality. Callers wrap the error as recoverable (pre-commit)
// or fatal (post-commit audit).
func (s *Scenario) checkConsistency() error {
	for _, inv := range s.Invoices {
		if err := inv.CheckAmounts(); err != nil {
			return err
		}
	}
	for _, p := range s.Payments {
		if err := p.CheckAmount(); err != nil {
			return err
		}
		if err := p.CheckDates(); err != nil {
			return err
		}
	}

	linkByPair := make(map[pairKey]*models.PaymentLink, len(s.Links))
	for _, l := range s.Links {
		if !l.AmountApplied.IsPositive() {
			return fmt.Errorf("link %s->%s: amount applied %s is not positive", l.PaymentID, l.InvoiceID, l.AmountApplied)
		}
		if s.invoiceByID(l.InvoiceID) == nil {
			return fmt.Errorf("link references foreign invoice %s", l.InvoiceID)
		}
		if s.paymentByID(l.PaymentID) == nil {
			return fmt.Errorf("link references foreign payment %s", l.PaymentID)
		}
		linkByPair[pairKey{l.InvoiceID, l.PaymentID}] = l
	}

	// For every payment, the applied sum never exceeds the payment amount.
	for payID, applied := range models.AppliedByPayment(s.Links) {
		p := s.paymentByID(payID)
		if applied.GreaterThan(p.Amount) {
			return fmt.Errorf("payment %s: applied %s exceeds amount %s", payID, applied, p.Amount)
		}
	}

	// For every invoice, coverage stays within gross unless this is an
	// explicit overpayment scenario, where the excess is bounded.
	for invID, covered := range models.CoverageByInvoice(s.Links) {
		inv := s.invoiceByID(invID)
		limit := inv.GrossAmount
		if s.Amount == models.AmountExcess || s.Amount == models.AmountPenalized {
			limit = inv.GrossAmount.Mul(excessCap)
		}
		if covered.GreaterThan(limit) {
			return fmt.Errorf("invoice %s: coverage %s exceeds limit %s (pattern %s)",
				invID, covered, limit, s.Amount)
		}
	}

	// Labels are a derived view: amount covered must equal the link's
	// amount applied bit for bit, and unrelated labels must have no link.
	for _, lbl := range s.Labels {
		k := pairKey{lbl.InvoiceID, lbl.PaymentID}
		link, linked := linkByPair[k]
		if lbl.MatchType == models.MatchTypeUnrelated {
			if linked {
				return fmt.Errorf("unrelated label %s/%s shadows a committed link", lbl.InvoiceID, lbl.PaymentID)
			}
			continue
		}
		if !linked {
			return fmt.Errorf("label %s/%s has no backing link", lbl.InvoiceID, lbl.PaymentID)
		}
		if !lbl.AmountCovered.Equal(link.AmountApplied) {
			return fmt.Errorf("label %s/%s: amount covered %s != amount applied %s",
				lbl.InvoiceID, lbl.PaymentID, lbl.AmountCovered, link.AmountApplied)
		}
		if lbl.Confidence < 0 || lbl.Confidence > 1 {
			return fmt.Errorf("label %s/%s: confidence %f out of range", lbl.InvoiceID, lbl.PaymentID, lbl.Confidence)
		}
	}
	return nil
}
