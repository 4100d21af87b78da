package generator

import (
	"strings"

	"github.com/flopayments/recongen/models"
)

// Injector degrades identification signals after linking. It may rewrite
// free text and add decoy entities, but it never touches a committed
// AmountApplied, an amount field or a date field: ambiguity is about
// identification difficulty, never about breaking arithmetic truth.
type Injector struct{}

// Apply perturbs a scenario in place according to its quality level and the
// block's noise level. Corruption counts per pair feed the confidence
// function in the ground truth synthesizer.
func (Injector) Apply(sc *SlotContext, s *Scenario, noiseLevel float64) {
	switch s.Quality {
	case models.QualityPerfect:
		return
	case models.QualityFuzzy:
		fuzzText(sc, s, noiseLevel)
	case models.QualityNoisy:
		fuzzText(sc, s, noiseLevel)
		injectAmbiguity(sc, s, noiseLevel)
	}
}

// fuzzText applies bounded textual drift to payer names and reference
// fields.
func fuzzText(sc *SlotContext, s *Scenario, noiseLevel float64) {
	for _, pay := range s.Payments {
		if sc.Rng.Float64() >= noiseLevel {
			continue
		}
		n := 1 + sc.Rng.Intn(2)
		for i := 0; i < n; i++ {
			switch sc.Rng.Intn(3) {
			case 0:
				pay.Reference = perturbText(sc, pay.Reference)
			case 1:
				pay.Detail = perturbText(sc, pay.Detail)
			default:
				pay.Payer = perturbText(sc, pay.Payer)
			}
		}
		for _, l := range s.Links {
			if l.PaymentID == pay.ID {
				s.corrupt(l.InvoiceID, pay.ID, n)
			}
		}
	}
}

// injectAmbiguity adds the heavier transformations: amount-twin decoy
// invoices and blanked or truncated references.
func injectAmbiguity(sc *SlotContext, s *Scenario, noiseLevel float64) {
	if len(s.Links) == 0 {
		return
	}

	if sc.Rng.Float64() < noiseLevel {
		// Duplicate one linked invoice's amount onto a decoy so two
		// invoices are equally plausible for the same payment.
		link := s.Links[sc.Rng.Intn(len(s.Links))]
		orig := s.invoiceByID(link.InvoiceID)
		if orig != nil {
			decoy := *orig
			decoy.ID = sc.NewID("invoice")
			decoy.InvoiceNumber = perturbInvoiceNumber(sc, orig.InvoiceNumber)
			decoy.Description = perturbText(sc, orig.Description)
			s.Invoices = append(s.Invoices, &decoy)
			s.addDecoyPair(decoy.ID, link.PaymentID,
				"Amount-twin decoy: same amount as the true invoice, no relation")
			s.corrupt(link.InvoiceID, link.PaymentID, 1)
		}
	}

	if sc.Rng.Float64() < noiseLevel {
		// Blank or truncate one payment's reference.
		pay := s.Payments[sc.Rng.Intn(len(s.Payments))]
		if sc.Rng.Float64() < 0.5 {
			pay.Reference = ""
		} else if len(pay.Reference) > 8 {
			pay.Reference = pay.Reference[:len(pay.Reference)/2]
		}
		for _, l := range s.Links {
			if l.PaymentID == pay.ID {
				s.corrupt(l.InvoiceID, pay.ID, 2)
			}
		}
	}
}

var abbreviations = [][2]string{
	{"Fattura", "Fatt."},
	{"fattura", "fatt."},
	{"Pagamento", "Pag."},
	{"SRL", "S.R.L."},
	{"SPA", "S.P.A."},
	{"BONIFICO SEPA", "BON. SEPA"},
}

// perturbText applies one bounded transform: an adjacent character swap, a
// punctuation/whitespace variant, or an abbreviation.
func perturbText(sc *SlotContext, text string) string {
	if text == "" {
		return text
	}
	switch sc.Rng.Intn(3) {
	case 0:
		runes := []rune(text)
		if len(runes) < 4 {
			return text
		}
		i := 1 + sc.Rng.Intn(len(runes)-2)
		runes[i], runes[i+1] = runes[i+1], runes[i]
		return string(runes)
	case 1:
		if sc.Rng.Float64() < 0.5 {
			return strings.ReplaceAll(text, " ", "  ")
		}
		return strings.ReplaceAll(text, ".", "")
	default:
		for _, ab := range abbreviations {
			if strings.Contains(text, ab[0]) {
				return strings.Replace(text, ab[0], ab[1], 1)
			}
		}
		return strings.ToUpper(text)
	}
}
