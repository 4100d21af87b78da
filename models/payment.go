package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID          string          `json:"id"`
	PaymentDate time.Time       `json:"payment_date"`
	ValueDate   time.Time       `json:"value_date"`
	Amount      decimal.Decimal `json:"amount"`
	Payer       string          `json:"payer"`
	PayerIBAN   string          `json:"payer_iban"`
	// Reference is the causale: free text, possibly empty or imprecise.
	// An empty or vague reference is intentional realism, not a defect.
	Reference string        `json:"reference"`
	Detail    string        `json:"detail"`
	Method    PaymentMethod `json:"method"`

	TextFallback bool `json:"text_fallback"`
}

// CheckDates verifies the value date never precedes the payment date.
func (p *Payment) CheckDates() error {
	if p.ValueDate.Before(p.PaymentDate) {
		return fmt.Errorf("payment %s: value date %s precedes payment date %s",
			p.ID, p.ValueDate.Format("2006-01-02"), p.PaymentDate.Format("2006-01-02"))
	}
	return nil
}

// CheckAmount verifies the payment amount is strictly positive.
func (p *Payment) CheckAmount() error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("payment %s: amount %s is not positive", p.ID, p.Amount)
	}
	return nil
}
