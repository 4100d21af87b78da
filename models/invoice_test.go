package models_test

import (
	"testing"
	"time"

	"github.com/flopayments/recongen/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCheckAmountsIdentity(t *testing.T) {
	inv := &models.Invoice{
		ID:          "inv-1",
		GrossAmount: d("1220.00"),
		NetAmount:   d("1000.00"),
		TaxAmount:   d("220.00"),
	}
	if err := inv.CheckAmounts(); err != nil {
		t.Fatalf("identity should hold: %v", err)
	}

	inv.TaxAmount = d("219.98")
	if err := inv.CheckAmounts(); err == nil {
		t.Fatal("expected identity violation beyond tolerance")
	}

	// One cent off stays within tolerance.
	inv.TaxAmount = d("219.99")
	if err := inv.CheckAmounts(); err != nil {
		t.Fatalf("one cent should be tolerated: %v", err)
	}
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		GrossAmount: d("1000.00"),
		DueDate:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	if got := inv.DeriveStatus(d("1000.00"), now); got != models.InvoiceStatusPaid {
		t.Errorf("full coverage: got %s, want paid", got)
	}
	if got := inv.DeriveStatus(d("300.00"), now); got != models.InvoiceStatusPartiallyPaid {
		t.Errorf("partial coverage: got %s, want partially_paid", got)
	}
	if got := inv.DeriveStatus(decimal.Zero, now); got != models.InvoiceStatusIssued {
		t.Errorf("no coverage before due date: got %s, want issued", got)
	}

	past := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	if got := inv.DeriveStatus(decimal.Zero, past); got != models.InvoiceStatusOverdue {
		t.Errorf("no coverage after due date: got %s, want overdue", got)
	}
	// Coverage wins over the due date.
	if got := inv.DeriveStatus(d("1000.00"), past); got != models.InvoiceStatusPaid {
		t.Errorf("full coverage after due date: got %s, want paid", got)
	}
}

func TestCoverageSums(t *testing.T) {
	links := []*models.PaymentLink{
		{InvoiceID: "i1", PaymentID: "p1", AmountApplied: d("300.00")},
		{InvoiceID: "i1", PaymentID: "p2", AmountApplied: d("200.00")},
		{InvoiceID: "i2", PaymentID: "p2", AmountApplied: d("150.50")},
	}
	byInv := models.CoverageByInvoice(links)
	if !byInv["i1"].Equal(d("500.00")) {
		t.Errorf("invoice i1 coverage: got %s, want 500.00", byInv["i1"])
	}
	byPay := models.AppliedByPayment(links)
	if !byPay["p2"].Equal(d("350.50")) {
		t.Errorf("payment p2 applied: got %s, want 350.50", byPay["p2"])
	}
}
