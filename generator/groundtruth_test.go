package generator

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testInvoice(id, gross, net, tax string) *models.Invoice {
	return &models.Invoice{
		ID:            id,
		InvoiceNumber: "FT2025/0001",
		IssueDate:     date("2025-03-10"),
		DueDate:       date("2025-03-10"),
		GrossAmount:   d(gross),
		NetAmount:     d(net),
		TaxAmount:     d(tax),
		Provider:      "Rossi SRL",
		Client:        "Bianchi SPA",
	}
}

func testPayment(id, amount string, day string) *models.Payment {
	return &models.Payment{
		ID:          id,
		PaymentDate: date(day),
		ValueDate:   date(day),
		Amount:      d(amount),
		Payer:       "Bianchi SPA",
		Method:      models.MethodBonifico,
	}
}

func TestExactMatchLabel(t *testing.T) {
	s := newScenario(0, "standard", "perfect_1_1")
	s.Cardinality = models.CardinalityOneToOne
	s.Timing = models.TimingStandard
	s.Amount = models.AmountExact
	s.Quality = models.QualityPerfect

	inv := testInvoice("inv-1", "1000.00", "819.67", "180.33")
	pay := testPayment("pay-1", "1000.00", "2025-03-25")
	s.Invoices = []*models.Invoice{inv}
	s.Payments = []*models.Payment{pay}
	s.Links = []*models.PaymentLink{{InvoiceID: inv.ID, PaymentID: pay.ID, AmountApplied: d("1000.00")}}
	s.note(inv.ID, pay.ID, "Perfect 1:1 match")

	SynthesizeLabels(s)
	if err := s.checkConsistency(); err != nil {
		t.Fatalf("consistency: %v", err)
	}
	if len(s.Labels) != 1 {
		t.Fatalf("got %d labels, want 1", len(s.Labels))
	}
	lbl := s.Labels[0]
	if lbl.MatchType != models.MatchTypeExact {
		t.Fatalf("match type %s, want exact", lbl.MatchType)
	}
	if lbl.Confidence != 1.0 {
		t.Fatalf("confidence %f, want 1.0", lbl.Confidence)
	}
	if !lbl.AmountCovered.Equal(d("1000.00")) {
		t.Fatalf("amount covered %s, want 1000.00", lbl.AmountCovered)
	}

	covered := models.CoverageByInvoice(s.Links)[inv.ID]
	if st := inv.DeriveStatus(covered, date("2025-06-30")); st != models.InvoiceStatusPaid {
		t.Fatalf("status %s, want paid", st)
	}
}

func TestInstallmentLabels(t *testing.T) {
	s := newScenario(1, "complex", "installments_1_n")
	s.Cardinality = models.CardinalityOneToMany
	s.Timing = models.TimingStandard
	s.Amount = models.AmountExact
	s.Quality = models.QualityPerfect

	inv := testInvoice("inv-1", "900.00", "737.70", "162.30")
	s.Invoices = []*models.Invoice{inv}
	for i, day := range []string{"2025-03-20", "2025-04-20", "2025-05-20"} {
		pay := testPayment(fmt.Sprintf("pay-%d", i+1), "300.00", day)
		s.Payments = append(s.Payments, pay)
		s.Links = append(s.Links, &models.PaymentLink{InvoiceID: inv.ID, PaymentID: pay.ID, AmountApplied: d("300.00")})
	}

	SynthesizeLabels(s)
	if err := s.checkConsistency(); err != nil {
		t.Fatalf("consistency: %v", err)
	}
	for _, lbl := range s.Labels {
		if lbl.MatchType != models.MatchTypePartial {
			t.Fatalf("installment label %s, want partial", lbl.MatchType)
		}
		if lbl.Confidence != 0.85 {
			t.Fatalf("confidence %f, want 0.85", lbl.Confidence)
		}
	}
	covered := models.CoverageByInvoice(s.Links)[inv.ID]
	if !covered.Equal(inv.GrossAmount) {
		t.Fatalf("coverage %s, want %s", covered, inv.GrossAmount)
	}
	if st := inv.DeriveStatus(covered, date("2025-06-30")); st != models.InvoiceStatusPaid {
		t.Fatalf("status %s, want paid", st)
	}
}

func TestGroupDiscountLabels(t *testing.T) {
	s := newScenario(2, "complex", "group_discount_n_1")
	s.Cardinality = models.CardinalityManyToOne
	s.Timing = models.TimingStandard
	s.Amount = models.AmountDiscounted
	s.Quality = models.QualityPerfect

	invA := testInvoice("inv-a", "500.00", "409.84", "90.16")
	invB := testInvoice("inv-b", "300.00", "245.90", "54.10")
	pay := testPayment("pay-1", "784.00", "2025-04-15")
	s.Invoices = []*models.Invoice{invA, invB}
	s.Payments = []*models.Payment{pay}

	shares, err := allocateProportional(pay.Amount, []decimal.Decimal{invA.GrossAmount, invB.GrossAmount})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	for i, inv := range s.Invoices {
		s.Links = append(s.Links, &models.PaymentLink{
			InvoiceID:       inv.ID,
			PaymentID:       pay.ID,
			AmountApplied:   shares[i],
			AdjustmentKind:  models.AmountDiscounted,
			AdjustmentDelta: inv.GrossAmount.Sub(shares[i]),
		})
		s.markFuzzy(inv.ID, pay.ID)
	}

	SynthesizeLabels(s)
	if err := s.checkConsistency(); err != nil {
		t.Fatalf("consistency: %v", err)
	}

	totalDelta := decimal.Zero
	for i, lbl := range s.Labels {
		if lbl.MatchType != models.MatchTypeRelated {
			t.Fatalf("discounted label %s, want related", lbl.MatchType)
		}
		if !lbl.AmountCovered.Equal(s.Links[i].AmountApplied) {
			t.Fatalf("label covered %s != link applied %s", lbl.AmountCovered, s.Links[i].AmountApplied)
		}
		totalDelta = totalDelta.Add(s.Links[i].AdjustmentDelta)
	}
	if !totalDelta.Equal(d("16.00")) {
		t.Fatalf("total discount delta %s, want 16.00", totalDelta)
	}

	covered := models.CoverageByInvoice(s.Links)
	for _, inv := range s.Invoices {
		if st := inv.DeriveStatus(covered[inv.ID], date("2025-06-30")); st != models.InvoiceStatusPartiallyPaid {
			t.Fatalf("invoice %s status %s, want partially_paid", inv.ID, st)
		}
	}
}

func TestDecoyLabel(t *testing.T) {
	s := newScenario(3, "disturbance", "outlier_decoys")
	s.Quality = models.QualityPerfect

	inv := testInvoice("inv-1", "250000.00", "204918.03", "45081.97")
	pay := testPayment("pay-1", "310000.00", "2026-01-15")
	s.Invoices = []*models.Invoice{inv}
	s.Payments = []*models.Payment{pay}
	s.addDecoyPair(inv.ID, pay.ID, "Outlier decoy: extreme amount and date, no relation")

	SynthesizeLabels(s)
	if err := s.checkConsistency(); err != nil {
		t.Fatalf("consistency: %v", err)
	}
	lbl := s.Labels[0]
	if lbl.MatchType != models.MatchTypeUnrelated {
		t.Fatalf("decoy label %s, want unrelated", lbl.MatchType)
	}
	if lbl.Confidence != 0.05 {
		t.Fatalf("decoy confidence %f, want 0.05", lbl.Confidence)
	}
	if !lbl.AmountCovered.IsZero() {
		t.Fatalf("decoy amount covered %s, want 0", lbl.AmountCovered)
	}
}

func TestCorruptionDegradesLabel(t *testing.T) {
	s := newScenario(4, "ambiguous", "fuzzy_reference_1_1")
	s.Cardinality = models.CardinalityOneToOne
	s.Timing = models.TimingStandard
	s.Amount = models.AmountExact
	s.Quality = models.QualityFuzzy

	inv := testInvoice("inv-1", "1000.00", "819.67", "180.33")
	pay := testPayment("pay-1", "1000.00", "2025-03-25")
	s.Invoices = []*models.Invoice{inv}
	s.Payments = []*models.Payment{pay}
	s.Links = []*models.PaymentLink{{InvoiceID: inv.ID, PaymentID: pay.ID, AmountApplied: d("1000.00")}}
	s.corrupt(inv.ID, pay.ID, 1)

	SynthesizeLabels(s)
	lbl := s.Labels[0]
	if lbl.MatchType != models.MatchTypeRelated {
		t.Fatalf("corrupted pair label %s, want related", lbl.MatchType)
	}
	if lbl.Confidence != 0.55 {
		t.Fatalf("confidence %f, want 0.55", lbl.Confidence)
	}
	if !strings.Contains(lbl.Rationale, "degraded reference") {
		t.Fatalf("rationale %q does not mention the degradation", lbl.Rationale)
	}
}
