package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AmountTolerance is the accounting identity tolerance: gross must equal
// net + tax within one cent.
var AmountTolerance = decimal.NewFromFloat(0.01)

type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	ProviderID    string          `json:"provider_id"`
	Provider      string          `json:"provider"`
	ProviderVatID string          `json:"provider_vat_id"`
	Client        string          `json:"client"`
	Description   string          `json:"description"`
	Sector        string          `json:"sector"`
	ServiceType   string          `json:"service_type"`

	// TextFallback marks records whose free text came from the local
	// fallback instead of the text service, so they can be backfilled.
	TextFallback bool `json:"text_fallback"`
}

// CheckAmounts verifies the accounting identity gross = net + tax within
// AmountTolerance and that all three amounts are positive.
func (inv *Invoice) CheckAmounts() error {
	if !inv.GrossAmount.IsPositive() {
		return fmt.Errorf("invoice %s: gross amount %s is not positive", inv.ID, inv.GrossAmount)
	}
	if inv.NetAmount.IsNegative() || inv.TaxAmount.IsNegative() {
		return fmt.Errorf("invoice %s: negative net/tax breakdown", inv.ID)
	}
	diff := inv.GrossAmount.Sub(inv.NetAmount.Add(inv.TaxAmount)).Abs()
	if diff.GreaterThan(AmountTolerance) {
		return fmt.Errorf("invoice %s: gross %s != net %s + tax %s (diff %s)",
			inv.ID, inv.GrossAmount, inv.NetAmount, inv.TaxAmount, diff)
	}
	return nil
}

// DeriveStatus computes the invoice status from the total amount covered by
// committed links and the generation reference date. Status is a derived
// view; nothing in the generator sets it directly.
func (inv *Invoice) DeriveStatus(covered decimal.Decimal, now time.Time) InvoiceStatus {
	switch {
	case covered.GreaterThanOrEqual(inv.GrossAmount):
		return InvoiceStatusPaid
	case covered.IsPositive():
		return InvoiceStatusPartiallyPaid
	case now.After(inv.DueDate):
		return InvoiceStatusOverdue
	default:
		return InvoiceStatusIssued
	}
}
