package generator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/models"
	"github.com/flopayments/recongen/registry"
)

// InvoiceProfile bundles the distributions one invoice is drawn from.
type InvoiceProfile struct {
	AmountMin decimal.Decimal
	AmountMax decimal.Decimal
	DateStart time.Time
	DateEnd   time.Time
	Party     *models.Party
	Client    string
	Service   string
}

// PaymentProfile bundles the distributions one payment is drawn from.
type PaymentProfile struct {
	Amount decimal.Decimal
	Date   time.Time
	Payer  string
	IBAN   string
}

// Factory builds bare, unlinked entities. It holds no state beyond the tax
// rate; identifiers come from the slot's allocator.
type Factory struct {
	taxRate decimal.Decimal
}

func NewFactory(taxRate float64) *Factory {
	return &Factory{taxRate: decimal.NewFromFloat(taxRate)}
}

var paymentMethods = []models.PaymentMethod{
	models.MethodBonifico, models.MethodBonifico, models.MethodBonifico,
	models.MethodRiBa, models.MethodSDD, models.MethodAssegno, models.MethodCarta,
}

// CreateInvoice draws amounts and dates from the profile. Gross is sampled,
// net is derived from the tax rate and tax closes the identity exactly, so
// gross = net + tax always holds to the cent.
func (f *Factory) CreateInvoice(sc *SlotContext, p InvoiceProfile) *models.Invoice {
	gross := randAmount(sc.Rng, p.AmountMin, p.AmountMax)
	net := gross.Div(one.Add(f.taxRate)).Round(2)
	tax := gross.Sub(net)

	issue := randDate(sc, p.DateStart, p.DateEnd)
	due := issue.AddDate(0, 0, dueDays(sc, gross))

	service := p.Service
	if service == "" {
		types := registry.ServiceTypesFor(p.Party.Sector)
		service = types[sc.Rng.Intn(len(types))]
	}
	client := p.Client
	if client == "" {
		client = registry.ClientName(sc.Rng, p.Party.Sector)
	}

	return &models.Invoice{
		ID:            sc.NewID("invoice"),
		IssueDate:     issue,
		DueDate:       due,
		GrossAmount:   gross,
		NetAmount:     net,
		TaxAmount:     tax,
		ProviderID:    p.Party.ID,
		Provider:      p.Party.Name,
		ProviderVatID: p.Party.VatID,
		Client:        client,
		Sector:        p.Party.Sector,
		ServiceType:   service,
	}
}

// CreatePayment builds a payment shell. The value date trails the payment
// date by 0-2 business-ish days, never precedes it.
func (f *Factory) CreatePayment(sc *SlotContext, p PaymentProfile) *models.Payment {
	return &models.Payment{
		ID:          sc.NewID("payment"),
		PaymentDate: p.Date,
		ValueDate:   p.Date.AddDate(0, 0, sc.Rng.Intn(3)),
		Amount:      p.Amount,
		Payer:       p.Payer,
		PayerIBAN:   p.IBAN,
		Method:      paymentMethods[sc.Rng.Intn(len(paymentMethods))],
	}
}

func randDate(sc *SlotContext, start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, sc.Rng.Intn(days+1))
}

// dueDays follows the historical distribution: most invoices fall due on
// issue, the rest spread over short/month/two-month terms weighted by size.
func dueDays(sc *SlotContext, gross decimal.Decimal) int {
	if sc.Rng.Float64() < 0.75 {
		return 0
	}
	type band struct{ min, max int }
	bands := []band{{1, 15}, {28, 31}, {60, 62}}
	var weights []float64
	switch {
	case gross.LessThan(decimal.NewFromInt(1000)):
		weights = []float64{0.6, 0.3, 0.1}
	case gross.LessThan(decimal.NewFromInt(5000)):
		weights = []float64{0.2, 0.5, 0.3}
	default:
		weights = []float64{0.1, 0.3, 0.6}
	}
	b := bands[weightedIndex(sc, weights)]
	return b.min + sc.Rng.Intn(b.max-b.min+1)
}

func weightedIndex(sc *SlotContext, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := sc.Rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return len(weights) - 1
}
