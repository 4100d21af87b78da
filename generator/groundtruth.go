package generator

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/models"
)

// SynthesizeLabels derives the ground truth table from the committed links
// and the recorded decoy pairs. It reads the scenario, never mutates
// entities or links: labels are a view, and AmountCovered always equals the
// link's AmountApplied exactly.
func SynthesizeLabels(s *Scenario) {
	s.Labels = s.Labels[:0]

	for _, link := range s.Links {
		k := pairKey{link.InvoiceID, link.PaymentID}
		corr := s.corruption[k]
		mt := s.matchTypeFor(link, corr)

		rationale := s.notes[k]
		if rationale == "" {
			rationale = "Linked pair"
		}
		if corr > 0 {
			rationale += " [degraded reference]"
		}

		s.Labels = append(s.Labels, &models.GroundTruthLabel{
			InvoiceID:     link.InvoiceID,
			PaymentID:     link.PaymentID,
			MatchType:     mt,
			Confidence:    confidenceFor(baseConfidence(mt), corr),
			AmountCovered: link.AmountApplied,
			Rationale:     rationale,
		})
	}

	for _, k := range s.decoyPairs {
		s.Labels = append(s.Labels, &models.GroundTruthLabel{
			InvoiceID:     k.InvoiceID,
			PaymentID:     k.PaymentID,
			MatchType:     models.MatchTypeUnrelated,
			Confidence:    baseConfidence(models.MatchTypeUnrelated),
			AmountCovered: decimal.Zero,
			Rationale:     s.decoyNotes[k],
		})
	}
}

// matchTypeFor classifies one committed link:
//   - exact: the allocation covers the whole invoice with the whole payment,
//     timing is within the standard window and nothing degraded the pair;
//   - related: the pair reconciled only beyond the cent tolerance (fuzzy
//     amounts) or its identification signal was corrupted away from exact;
//   - partial: the allocation covers less than the invoice gross.
func (s *Scenario) matchTypeFor(link *models.PaymentLink, corruptions int) models.MatchType {
	k := pairKey{link.InvoiceID, link.PaymentID}
	inv := s.invoiceByID(link.InvoiceID)
	pay := s.paymentByID(link.PaymentID)

	if s.fuzzyAmounts[k] {
		return models.MatchTypeRelated
	}

	fullInvoice := link.AmountApplied.Equal(inv.GrossAmount)
	fullPayment := link.AmountApplied.Equal(pay.Amount)
	standardTiming := s.Timing == models.TimingStandard || s.Timing == models.TimingSameDay

	if fullInvoice && fullPayment && standardTiming && corruptions == 0 {
		return models.MatchTypeExact
	}
	if fullInvoice && fullPayment {
		// A would-be exact pair degraded by timing or corruption.
		return models.MatchTypeRelated
	}
	if link.AmountApplied.LessThanOrEqual(inv.GrossAmount) {
		// Covers part of the invoice, or all of it as one slice of a
		// group payment.
		return models.MatchTypePartial
	}
	return models.MatchTypeRelated
}

func baseConfidence(mt models.MatchType) float64 {
	switch mt {
	case models.MatchTypeExact:
		return 1.0
	case models.MatchTypePartial:
		return 0.85
	case models.MatchTypeRelated:
		return 0.70
	default:
		return 0.05
	}
}

// confidenceFor degrades a base confidence by the number of corruption
// transformations applied to the pair. It is a pure function, so the label
// is reproducible from the run seed.
func confidenceFor(base float64, corruptions int) float64 {
	c := base - 0.15*float64(corruptions)
	if c < 0.05 {
		c = 0.05
	}
	return math.Round(c*100) / 100
}
