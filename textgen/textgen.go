// Package textgen is the boundary to the external text-generation service
// that writes invoice descriptions and payment causale text. The service is
// best-effort: every caller gets a deterministic local fallback when it is
// unreachable, and no invariant logic ever blocks on its output.
package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/utils"
)

type InvoiceTextRequest struct {
	Seq         int             `json:"seq"`
	IssueDate   string          `json:"issue_date"`
	Sector      string          `json:"sector"`
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceType string          `json:"service_type"`
}

type InvoiceText struct {
	Description   string `json:"description"`
	Client        string `json:"client"`
	InvoiceNumber string `json:"invoice_number"`
	// Fallback marks text produced locally instead of by the service, so
	// affected records can be backfilled later.
	Fallback bool `json:"fallback"`
}

type PaymentTextRequest struct {
	Seq             int             `json:"seq"`
	Provider        string          `json:"provider"`
	Amount          decimal.Decimal `json:"amount"`
	ServiceType     string          `json:"service_type"`
	InvoiceNumbers  []string        `json:"invoice_numbers"`
	IncludeInvoice  bool            `json:"include_invoice"`
	BillingPeriod   string          `json:"billing_period,omitempty"`
}

type PaymentText struct {
	Detail    string `json:"detail"`
	Reference string `json:"reference"`
	// HasInvoice reports whether the causale names the invoice(s) it pays.
	HasInvoice bool `json:"has_invoice"`
	Fallback   bool `json:"fallback"`
}

// Generator produces free text for a batch of entities. Implementations must
// be idempotent for identical requests; callers may retry on transient
// failure.
type Generator interface {
	InvoiceTexts(ctx context.Context, reqs []InvoiceTextRequest) ([]InvoiceText, error)
	PaymentTexts(ctx context.Context, reqs []PaymentTextRequest) ([]PaymentText, error)
}

var fallbackDescriptions = map[string]string{
	"Sviluppo software":          "Sviluppo applicazione software custom - Rif. Prog. interno",
	"Manutenzione sistemi":       "Canone manutenzione sistemi informatici",
	"Consulenza tecnica":         "Consulenza tecnica specialistica",
	"Consulenza legale":          "Prestazioni di consulenza legale",
	"Assistenza contrattuale":    "Assistenza redazione contrattualistica",
	"Campagne pubblicitarie":     "Gestione campagna pubblicitaria",
	"Tenuta contabilità":         "Tenuta contabilità ordinaria periodo di competenza",
	"Consulenza fiscale":         "Consulenza fiscale e tributaria",
	"Progettazione":              "Attività di progettazione esecutiva",
	"Corsi di formazione":        "Erogazione corsi di formazione professionale",
	"Trasporti":                  "Servizi di trasporto merci",
}

// Fallback is the deterministic local generator. Output depends only on the
// request fields, so the same run produces the same text.
type Fallback struct{}

func (Fallback) InvoiceTexts(ctx context.Context, reqs []InvoiceTextRequest) ([]InvoiceText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]InvoiceText, len(reqs))
	for i, r := range reqs {
		out[i] = fallbackInvoiceText(r)
	}
	return out, nil
}

func (Fallback) PaymentTexts(ctx context.Context, reqs []PaymentTextRequest) ([]PaymentText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]PaymentText, len(reqs))
	for i, r := range reqs {
		out[i] = fallbackPaymentText(r)
	}
	return out, nil
}

func fallbackInvoiceText(r InvoiceTextRequest) InvoiceText {
	desc, ok := fallbackDescriptions[r.ServiceType]
	if !ok {
		desc = "Prestazione di servizi: " + utils.UppercaseFirst(r.ServiceType)
	}
	year := "2024"
	if len(r.IssueDate) >= 4 {
		year = r.IssueDate[:4]
	}
	return InvoiceText{
		Description:   desc,
		Client:        "BETA SOLUTIONS SRL",
		InvoiceNumber: fmt.Sprintf("FT%s/%04d", year, r.Seq%10000),
		Fallback:      true,
	}
}

func fallbackPaymentText(r PaymentTextRequest) PaymentText {
	var detail, ref string
	switch {
	case r.IncludeInvoice && len(r.InvoiceNumbers) > 0 && len(r.InvoiceNumbers) <= 3:
		nums := strings.Join(utils.UniqueSlice(r.InvoiceNumbers), ", ")
		detail = fmt.Sprintf("BONIFICO SEPA - Pagamento fatture n. %s", nums)
		ref = fmt.Sprintf("Pagamento fatture %s", nums)
		if len(r.InvoiceNumbers) == 1 {
			detail = fmt.Sprintf("BONIFICO SEPA - Pagamento fattura n. %s", nums)
			ref = fmt.Sprintf("Pagamento fattura %s", nums)
		}
	case r.IncludeInvoice && r.BillingPeriod != "":
		detail = fmt.Sprintf("BONIFICO SEPA - Pagamento fatture periodo %s", r.BillingPeriod)
		ref = fmt.Sprintf("Pagamento fatture %s", r.BillingPeriod)
	case r.IncludeInvoice:
		detail = "BONIFICO SEPA - Pagamento fatture multiple"
		ref = "Pagamento fatture multiple"
	default:
		detail = fmt.Sprintf("BONIFICO SEPA - Pagamento %s", r.ServiceType)
		ref = fmt.Sprintf("Pagamento %s", r.ServiceType)
	}
	return PaymentText{
		Detail:     detail,
		Reference:  ref,
		HasInvoice: r.IncludeInvoice,
		Fallback:   true,
	}
}
