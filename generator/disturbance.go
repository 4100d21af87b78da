package generator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/models"
	"github.com/flopayments/recongen/registry"
	"github.com/flopayments/recongen/textgen"
)

// Disturbance shapes: entities that are deliberately unmatched. They stress
// a matcher's false-positive robustness, so nothing here creates links.

func (b *Builder) buildStandaloneInvoices(ctx context.Context, sc *SlotContext, s *Scenario) error {
	party := b.pickParty(sc)
	start, end := issueWindow(sc)
	n := 1 + sc.Rng.Intn(3)
	for i := 0; i < n; i++ {
		s.Invoices = append(s.Invoices, b.factory.CreateInvoice(sc, InvoiceProfile{
			AmountMin: b.bounds.InvoiceMin,
			AmountMax: b.bounds.InvoiceMax,
			DateStart: start,
			DateEnd:   end,
			Party:     party,
		}))
	}
	return b.fillInvoiceTexts(ctx, sc, s, s.Invoices, false)
}

func (b *Builder) buildStandalonePayments(ctx context.Context, sc *SlotContext, s *Scenario) error {
	party := b.pickParty(sc)
	start, end := issueWindow(sc)
	n := 1 + sc.Rng.Intn(3)
	reqs := make([]textgen.PaymentTextRequest, n)
	for i := 0; i < n; i++ {
		service := registry.ServiceTypesFor(party.Sector)[sc.Rng.Intn(len(registry.ServiceTypesFor(party.Sector)))]
		pay := b.factory.CreatePayment(sc, PaymentProfile{
			Amount: randAmount(sc.Rng, b.bounds.InvoiceMin, b.bounds.InvoiceMax),
			Date:   randDate(sc, start, end),
			Payer:  registry.ClientName(sc.Rng, party.Sector),
			IBAN:   registry.IBAN(sc.Rng),
		})
		s.Payments = append(s.Payments, pay)
		reqs[i] = textgen.PaymentTextRequest{
			Seq:         sc.Slot*100 + i + 1,
			Provider:    party.Name,
			Amount:      pay.Amount,
			ServiceType: service,
		}
	}
	return b.fillPaymentTexts(ctx, sc, s, s.Payments, reqs)
}

var outlierFactor = decimal.NewFromInt(100)

// buildOutlierDecoy creates an invoice and a payment with extreme amounts
// and far-out dates. They are never linked; the pair carries an explicit
// unrelated label so the matcher sees a hard negative.
func (b *Builder) buildOutlierDecoy(ctx context.Context, sc *SlotContext, s *Scenario) error {
	party := b.pickParty(sc)
	start, end := issueWindow(sc)
	inv := b.factory.CreateInvoice(sc, InvoiceProfile{
		AmountMin: b.bounds.InvoiceMax,
		AmountMax: b.bounds.InvoiceMax.Mul(outlierFactor),
		DateStart: start.AddDate(-2, 0, 0),
		DateEnd:   start,
		Party:     party,
	})
	if err := b.fillInvoiceTexts(ctx, sc, s, []*models.Invoice{inv}, false); err != nil {
		return err
	}

	pay := b.factory.CreatePayment(sc, PaymentProfile{
		Amount: randAmount(sc.Rng, b.bounds.InvoiceMax.Mul(decimal.NewFromInt(10)), b.bounds.InvoiceMax.Mul(outlierFactor)),
		Date:   end.AddDate(0, 6+sc.Rng.Intn(6), 0),
		Payer:  registry.ClientName(sc.Rng, party.Sector),
		IBAN:   registry.IBAN(sc.Rng),
	})
	req := textgen.PaymentTextRequest{
		Seq:         sc.Slot*100 + 1,
		Provider:    party.Name,
		Amount:      pay.Amount,
		ServiceType: inv.ServiceType,
	}
	if err := b.fillPaymentTexts(ctx, sc, s, []*models.Payment{pay}, []textgen.PaymentTextRequest{req}); err != nil {
		return err
	}

	s.Invoices = []*models.Invoice{inv}
	s.Payments = []*models.Payment{pay}
	s.addDecoyPair(inv.ID, pay.ID, "Outlier decoy: extreme amount and date, no relation")
	return nil
}

// buildTextualDecoy creates a payment whose causale cites a number textually
// close to a real invoice's number, with no link. The label is unrelated
// with near-zero confidence.
func (b *Builder) buildTextualDecoy(ctx context.Context, sc *SlotContext, s *Scenario) error {
	party := b.pickParty(sc)
	start, end := issueWindow(sc)
	inv := b.factory.CreateInvoice(sc, InvoiceProfile{
		AmountMin: b.bounds.InvoiceMin,
		AmountMax: b.bounds.InvoiceMax,
		DateStart: start,
		DateEnd:   end,
		Party:     party,
	})
	if err := b.fillInvoiceTexts(ctx, sc, s, []*models.Invoice{inv}, false); err != nil {
		return err
	}

	pay := b.factory.CreatePayment(sc, PaymentProfile{
		Amount: randAmount(sc.Rng, b.bounds.InvoiceMin, b.bounds.InvoiceMax),
		Date:   inv.IssueDate.AddDate(0, 0, sc.Rng.Intn(91)),
		Payer:  registry.ClientName(sc.Rng, party.Sector),
		IBAN:   registry.IBAN(sc.Rng),
	})
	// The causale names a near-miss of the real invoice number.
	nearMiss := perturbInvoiceNumber(sc, inv.InvoiceNumber)
	pay.Reference = fmt.Sprintf("Pagamento fattura %s", nearMiss)
	pay.Detail = fmt.Sprintf("BONIFICO SEPA - Pagamento fattura n. %s", nearMiss)

	s.Invoices = []*models.Invoice{inv}
	s.Payments = []*models.Payment{pay}
	s.addDecoyPair(inv.ID, pay.ID, fmt.Sprintf("Textual decoy: causale cites %s, similar to %s, no relation", nearMiss, inv.InvoiceNumber))
	return nil
}

// perturbInvoiceNumber flips one digit so the number stays plausible but
// wrong.
func perturbInvoiceNumber(sc *SlotContext, number string) string {
	runes := []rune(number)
	var digitPositions []int
	for i, r := range runes {
		if r >= '0' && r <= '9' {
			digitPositions = append(digitPositions, i)
		}
	}
	if len(digitPositions) == 0 {
		return number + "1"
	}
	pos := digitPositions[sc.Rng.Intn(len(digitPositions))]
	old := runes[pos]
	repl := rune('0' + sc.Rng.Intn(10))
	if repl == old {
		repl = '0' + (old-'0'+1)%10
	}
	runes[pos] = repl
	return string(runes)
}
