package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flopayments/recongen/config"
	"github.com/flopayments/recongen/models"
	"github.com/flopayments/recongen/registry"
	"github.com/flopayments/recongen/textgen"
	"github.com/flopayments/recongen/utils"
)

// Descriptor fully describes one scenario slot: its taxonomy coordinates and
// the block it fills a quota for.
type Descriptor struct {
	Block       string
	SubPattern  string
	Kind        config.SubPatternKind
	Cardinality models.Cardinality
	Timing      models.TimingPattern
	Amount      models.AmountPattern
	Quality     models.QualityLevel
	NoiseLevel  float64
	Holdout     bool
}

// AmountBounds are the plan's money ranges, parsed once at startup.
type AmountBounds struct {
	InvoiceMin, InvoiceMax         decimal.Decimal
	InstallmentMin, InstallmentMax decimal.Decimal
	GroupMin, GroupMax             decimal.Decimal
}

func ParseAmountBounds(p config.AmountProfile) (AmountBounds, error) {
	var b AmountBounds
	var err error
	parse := func(s string, dst *decimal.Decimal) {
		if err != nil {
			return
		}
		*dst, err = utils.ParseAmount(s)
	}
	parse(p.InvoiceMin, &b.InvoiceMin)
	parse(p.InvoiceMax, &b.InvoiceMax)
	parse(p.InstallmentMin, &b.InstallmentMin)
	parse(p.InstallmentMax, &b.InstallmentMax)
	parse(p.GroupMin, &b.GroupMin)
	parse(p.GroupMax, &b.GroupMax)
	if err != nil {
		return b, fmt.Errorf("amount profile: %w", err)
	}
	return b, nil
}

// Builder realizes scenario instances. It owns no mutable state of its own;
// per-slot randomness and identifiers come from the SlotContext, so one
// Builder serves all worker goroutines.
type Builder struct {
	factory      *Factory
	text         textgen.Generator
	parties      []*models.Party
	bounds       AmountBounds
	maxRelations int
}

func NewBuilder(f *Factory, text textgen.Generator, parties []*models.Party, bounds AmountBounds, maxRelations int) *Builder {
	return &Builder{
		factory:      f,
		text:         text,
		parties:      parties,
		bounds:       bounds,
		maxRelations: maxRelations,
	}
}

// Build realizes one scenario instance. A ScenarioConstraintError means the
// sampled combination cannot satisfy the invariants; callers retry with a
// reseeded context.
func (b *Builder) Build(ctx context.Context, sc *SlotContext, d Descriptor) (*Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := newScenario(sc.Slot, d.Block, d.SubPattern)
	s.Cardinality = d.Cardinality
	s.Timing = d.Timing
	s.Amount = d.Amount
	s.Quality = d.Quality
	s.Holdout = d.Holdout

	var err error
	switch d.Kind {
	case config.KindStandaloneInvoice:
		err = b.buildStandaloneInvoices(ctx, sc, s)
	case config.KindStandalonePayment:
		err = b.buildStandalonePayments(ctx, sc, s)
	case config.KindOutlierDecoy:
		err = b.buildOutlierDecoy(ctx, sc, s)
	case config.KindTextualDecoy:
		err = b.buildTextualDecoy(ctx, sc, s)
	default:
		switch d.Cardinality {
		case models.CardinalityOneToOne:
			err = b.buildOneToOne(ctx, sc, d, s)
		case models.CardinalityOneToMany:
			err = b.buildOneToMany(ctx, sc, d, s)
		case models.CardinalityManyToOne:
			err = b.buildManyToOne(ctx, sc, d, s)
		case models.CardinalityManyToMany:
			err = b.buildManyToMany(ctx, sc, d, s)
		default:
			err = fmt.Errorf("descriptor %s/%s: unknown cardinality %q", d.Block, d.SubPattern, d.Cardinality)
		}
	}
	if err != nil {
		return nil, err
	}

	// Validate before commit. A failure here is still recoverable: the
	// slot retries with fresh entities.
	if cerr := s.checkConsistency(); cerr != nil {
		return nil, constraintErrf("pre-commit check: %v", cerr)
	}
	return s, nil
}

func (b *Builder) pickParty(sc *SlotContext) *models.Party {
	return b.parties[sc.Rng.Intn(len(b.parties))]
}

// issueWindow is where invoice issue dates fall: the year before the
// generation reference date, stopping a month short so standard payments
// mostly land in the past.
func issueWindow(sc *SlotContext) (time.Time, time.Time) {
	return sc.Now.AddDate(-1, 0, 0), sc.Now.AddDate(0, -1, 0)
}

func timingOffsetDays(sc *SlotContext, timing models.TimingPattern) int {
	switch timing {
	case models.TimingDelayed:
		return 91 + sc.Rng.Intn(90)
	case models.TimingEarly:
		return -(1 + sc.Rng.Intn(30))
	case models.TimingSameDay:
		return 0
	default:
		return sc.Rng.Intn(91)
	}
}

// timingWindowDays is the span installments spread over for a pattern.
func timingWindowDays(timing models.TimingPattern) int {
	switch timing {
	case models.TimingDelayed:
		return 180
	case models.TimingEarly, models.TimingSameDay:
		return 30
	default:
		return 90
	}
}

func includeInvoiceRef(sc *SlotContext, quality models.QualityLevel) bool {
	var p float64
	switch quality {
	case models.QualityPerfect:
		p = 0.5
	case models.QualityFuzzy:
		p = 0.25
	default:
		p = 0.1
	}
	return sc.Rng.Float64() < p
}

// fillInvoiceTexts asks the text collaborator for descriptions, client names
// and invoice numbers, in one batch per scenario. keepClient preserves the
// builder-chosen client (grouped invoices share one).
func (b *Builder) fillInvoiceTexts(ctx context.Context, sc *SlotContext, s *Scenario, invoices []*models.Invoice, keepClient bool) error {
	reqs := make([]textgen.InvoiceTextRequest, len(invoices))
	for i, inv := range invoices {
		reqs[i] = textgen.InvoiceTextRequest{
			Seq:         sc.Slot*100 + i + 1,
			IssueDate:   inv.IssueDate.Format("2006-01-02"),
			Sector:      inv.Sector,
			Provider:    inv.Provider,
			Amount:      inv.GrossAmount,
			ServiceType: inv.ServiceType,
		}
	}
	texts, err := b.text.InvoiceTexts(ctx, reqs)
	if err != nil {
		return err
	}
	for i, txt := range texts {
		invoices[i].Description = txt.Description
		invoices[i].InvoiceNumber = txt.InvoiceNumber
		if !keepClient && txt.Client != "" {
			invoices[i].Client = txt.Client
		}
		if txt.Fallback {
			invoices[i].TextFallback = true
			s.TextFallbacks++
		}
	}
	return nil
}

func (b *Builder) fillPaymentTexts(ctx context.Context, sc *SlotContext, s *Scenario, payments []*models.Payment, reqs []textgen.PaymentTextRequest) error {
	texts, err := b.text.PaymentTexts(ctx, reqs)
	if err != nil {
		return err
	}
	for i, txt := range texts {
		payments[i].Detail = txt.Detail
		payments[i].Reference = txt.Reference
		if txt.HasInvoice {
			s.InvoiceRefs++
		}
		if txt.Fallback {
			payments[i].TextFallback = true
			s.TextFallbacks++
		}
	}
	return nil
}

func (b *Builder) buildOneToOne(ctx context.Context, sc *SlotContext, d Descriptor, s *Scenario) error {
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

	payAmount, link := b.payForInvoice(sc, d.Amount, inv)
	payDate := inv.IssueDate.AddDate(0, 0, timingOffsetDays(sc, d.Timing))
	pay := b.factory.CreatePayment(sc, PaymentProfile{
		Amount: payAmount,
		Date:   payDate,
		Payer:  inv.Client,
		IBAN:   registry.IBAN(sc.Rng),
	})
	link.PaymentID = pay.ID

	reqs := []textgen.PaymentTextRequest{{
		Seq:            sc.Slot*100 + 1,
		Provider:       inv.Provider,
		Amount:         payAmount,
		ServiceType:    inv.ServiceType,
		InvoiceNumbers: []string{inv.InvoiceNumber},
		IncludeInvoice: includeInvoiceRef(sc, d.Quality),
	}}
	if err := b.fillPaymentTexts(ctx, sc, s, []*models.Payment{pay}, reqs); err != nil {
		return err
	}

	s.Invoices = []*models.Invoice{inv}
	s.Payments = []*models.Payment{pay}
	s.Links = []*models.PaymentLink{link}
	s.note(inv.ID, pay.ID, oneToOneNote(d.Amount))
	if d.Amount == models.AmountExcess || d.Amount == models.AmountPenalized ||
		d.Amount == models.AmountDiscounted {
		s.markFuzzy(inv.ID, pay.ID)
	}
	return nil
}

// payForInvoice derives the payment amount and the link for a single-invoice
// scenario. Discounts and penalties record their delta explicitly so a
// downstream model can separate agreed variation from noise.
func (b *Builder) payForInvoice(sc *SlotContext, pattern models.AmountPattern, inv *models.Invoice) (decimal.Decimal, *models.PaymentLink) {
	link := &models.PaymentLink{InvoiceID: inv.ID}
	var amount decimal.Decimal
	switch pattern {
	case models.AmountPartial:
		amount = scaleAmount(sc.Rng, inv.GrossAmount, 0.3, 0.8)
		link.CompletionPending = sc.Rng.Float64() < 0.5
	case models.AmountExcess:
		amount = scaleAmount(sc.Rng, inv.GrossAmount, 1.01, 1.10)
		link.AdjustmentKind = models.AmountExcess
		link.AdjustmentDelta = amount.Sub(inv.GrossAmount)
	case models.AmountDiscounted:
		amount = scaleAmount(sc.Rng, inv.GrossAmount, 0.90, 0.98)
		link.AdjustmentKind = models.AmountDiscounted
		link.AdjustmentDelta = inv.GrossAmount.Sub(amount)
	case models.AmountPenalized:
		amount = scaleAmount(sc.Rng, inv.GrossAmount, 1.02, 1.05)
		link.AdjustmentKind = models.AmountPenalized
		link.AdjustmentDelta = amount.Sub(inv.GrossAmount)
	default:
		amount = inv.GrossAmount
	}
	link.AmountApplied = amount
	return amount, link
}

func oneToOneNote(pattern models.AmountPattern) string {
	switch pattern {
	case models.AmountPartial:
		return "1:1 partial payment"
	case models.AmountExcess:
		return "1:1 overpayment"
	case models.AmountDiscounted:
		return "1:1 payment with agreed discount"
	case models.AmountPenalized:
		return "1:1 payment with late penalty"
	default:
		return "Perfect 1:1 match"
	}
}

func (b *Builder) buildOneToMany(ctx context.Context, sc *SlotContext, d Descriptor, s *Scenario) error {
	party := b.pickParty(sc)
	start, end := issueWindow(sc)
	inv := b.factory.CreateInvoice(sc, InvoiceProfile{
		AmountMin: b.bounds.InstallmentMin,
		AmountMax: b.bounds.InstallmentMax,
		DateStart: start,
		DateEnd:   end,
		Party:     party,
	})
	if err := b.fillInvoiceTexts(ctx, sc, s, []*models.Invoice{inv}, false); err != nil {
		return err
	}

	n := 2 + sc.Rng.Intn(4) // 2-5 installments

	total := inv.GrossAmount
	pendingResidual := false
	if d.Amount == models.AmountPartial {
		total = scaleAmount(sc.Rng, inv.GrossAmount, 0.4, 0.8)
		pendingResidual = true
	}
	parts, err := splitAmount(sc.Rng, total, n)
	if err != nil {
		return err
	}

	offsets := installmentOffsets(sc, d.Timing, n)

	s.Invoices = []*models.Invoice{inv}
	reqs := make([]textgen.PaymentTextRequest, n)
	for j := 0; j < n; j++ {
		pay := b.factory.CreatePayment(sc, PaymentProfile{
			Amount: parts[j],
			Date:   inv.IssueDate.AddDate(0, 0, offsets[j]),
			Payer:  inv.Client,
			IBAN:   registry.IBAN(sc.Rng),
		})
		link := &models.PaymentLink{
			InvoiceID:     inv.ID,
			PaymentID:     pay.ID,
			AmountApplied: parts[j],
		}
		if pendingResidual && j == n-1 {
			// The residual stays open for a later-scheduled payment
			// outside this dataset.
			link.CompletionPending = true
		}
		s.Payments = append(s.Payments, pay)
		s.Links = append(s.Links, link)
		s.note(inv.ID, pay.ID, fmt.Sprintf("Installment %d/%d", j+1, n))

		reqs[j] = textgen.PaymentTextRequest{
			Seq:            sc.Slot*100 + j + 1,
			Provider:       inv.Provider,
			Amount:         parts[j],
			ServiceType:    inv.ServiceType,
			InvoiceNumbers: []string{inv.InvoiceNumber},
			IncludeInvoice: includeInvoiceRef(sc, d.Quality),
		}
	}
	return b.fillPaymentTexts(ctx, sc, s, s.Payments, reqs)
}

// installmentOffsets spreads n payment dates over the timing window, either
// at a regular cadence or irregularly, sorted ascending.
func installmentOffsets(sc *SlotContext, timing models.TimingPattern, n int) []int {
	window := timingWindowDays(timing)
	base := 0
	if timing == models.TimingDelayed {
		base = 91
	}
	if timing == models.TimingEarly {
		base = -30
	}
	out := make([]int, n)
	if sc.Rng.Float64() < 0.5 {
		interval := window / n
		if interval < 1 {
			interval = 1
		}
		for j := range out {
			out[j] = base + interval*(j+1)
		}
		return out
	}
	for j := range out {
		out[j] = base + sc.Rng.Intn(window+1)
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (b *Builder) buildManyToOne(ctx context.Context, sc *SlotContext, d Descriptor, s *Scenario) error {
	party := b.pickParty(sc)
	n := groupSize(sc, b.maxRelations)
	client := registry.ClientName(sc.Rng, party.Sector)

	// Grouped invoices share a billing period: issue dates inside one
	// month-long window.
	start, _ := issueWindow(sc)
	periodStart := start.AddDate(0, sc.Rng.Intn(9), 0)
	periodEnd := periodStart.AddDate(0, 1, -1)

	service := registry.ServiceTypesFor(party.Sector)[sc.Rng.Intn(len(registry.ServiceTypesFor(party.Sector)))]
	invoices := make([]*models.Invoice, n)
	for i := 0; i < n; i++ {
		invoices[i] = b.factory.CreateInvoice(sc, InvoiceProfile{
			AmountMin: b.bounds.GroupMin,
			AmountMax: b.bounds.GroupMax,
			DateStart: periodStart,
			DateEnd:   periodEnd,
			Party:     party,
			Client:    client,
			Service:   service,
		})
	}
	if err := b.fillInvoiceTexts(ctx, sc, s, invoices, true); err != nil {
		return err
	}

	total := decimal.Zero
	latestIssue := invoices[0].IssueDate
	latestDue := invoices[0].DueDate
	numbers := make([]string, n)
	for i, inv := range invoices {
		total = total.Add(inv.GrossAmount)
		if inv.IssueDate.After(latestIssue) {
			latestIssue = inv.IssueDate
		}
		if inv.DueDate.After(latestDue) {
			latestDue = inv.DueDate
		}
		numbers[i] = inv.InvoiceNumber
	}

	payAmount := total
	adjustKind := models.AmountPattern("")
	switch d.Amount {
	case models.AmountDiscounted:
		payAmount = scaleAmount(sc.Rng, total, 0.90, 0.98)
		adjustKind = models.AmountDiscounted
	case models.AmountPenalized:
		payAmount = scaleAmount(sc.Rng, total, 1.02, 1.05)
		adjustKind = models.AmountPenalized
	}

	var applied []decimal.Decimal
	if adjustKind == "" {
		applied = make([]decimal.Decimal, n)
		for i, inv := range invoices {
			applied[i] = inv.GrossAmount
		}
	} else {
		weights := make([]decimal.Decimal, n)
		for i, inv := range invoices {
			weights[i] = inv.GrossAmount
		}
		var err error
		applied, err = allocateProportional(payAmount, weights)
		if err != nil {
			return err
		}
	}

	pay := b.factory.CreatePayment(sc, PaymentProfile{
		Amount: payAmount,
		Date:   groupPaymentDate(sc, d.Timing, latestIssue, latestDue),
		Payer:  client,
		IBAN:   registry.IBAN(sc.Rng),
	})

	for i, inv := range invoices {
		link := &models.PaymentLink{
			InvoiceID:     inv.ID,
			PaymentID:     pay.ID,
			AmountApplied: applied[i],
		}
		if adjustKind != "" {
			link.AdjustmentKind = adjustKind
			link.AdjustmentDelta = inv.GrossAmount.Sub(applied[i]).Abs()
			s.markFuzzy(inv.ID, pay.ID)
		}
		s.Links = append(s.Links, link)
		s.note(inv.ID, pay.ID, fmt.Sprintf("Group payment %d/%d", i+1, n))
	}

	req := textgen.PaymentTextRequest{
		Seq:            sc.Slot*100 + 1,
		Provider:       party.Name,
		Amount:         payAmount,
		ServiceType:    service,
		InvoiceNumbers: numbers,
		IncludeInvoice: true,
		BillingPeriod:  periodStart.Format("01/2006"),
	}
	if err := b.fillPaymentTexts(ctx, sc, s, []*models.Payment{pay}, []textgen.PaymentTextRequest{req}); err != nil {
		return err
	}

	s.Invoices = invoices
	s.Payments = []*models.Payment{pay}
	return nil
}

// groupPaymentDate anchors the group payment on the latest due date in the
// group: 0-15 days after it for standard timing, a quarter or more late for
// delayed, shortly before it for early. An early payment never precedes the
// last invoice of the group.
func groupPaymentDate(sc *SlotContext, timing models.TimingPattern, latestIssue, latestDue time.Time) time.Time {
	switch timing {
	case models.TimingDelayed:
		return latestDue.AddDate(0, 0, 91+sc.Rng.Intn(90))
	case models.TimingEarly:
		early := latestDue.AddDate(0, 0, -(1 + sc.Rng.Intn(15)))
		if early.Before(latestIssue) {
			return latestIssue
		}
		return early
	case models.TimingSameDay:
		return latestDue
	default:
		return latestDue.AddDate(0, 0, sc.Rng.Intn(16))
	}
}

// groupSize draws 2..maxRelations invoices, weighted toward small groups.
func groupSize(sc *SlotContext, maxRelations int) int {
	sizes := []int{2, 3, 4, 5}
	weights := []float64{0.4, 0.3, 0.2, 0.1}
	n := sizes[weightedIndex(sc, weights)]
	if maxRelations > 5 && sc.Rng.Float64() < 0.1 {
		n = 6 + sc.Rng.Intn(maxRelations-5)
	}
	if n > maxRelations {
		n = maxRelations
	}
	return n
}

// buildManyToMany composes overlapping sub-groups inside a single scenario
// instance: m payments poured across n invoices in order, so middle payments
// straddle invoice boundaries. Entities belong to exactly this instance;
// there is no cross-scenario sharing.
func (b *Builder) buildManyToMany(ctx context.Context, sc *SlotContext, d Descriptor, s *Scenario) error {
	party := b.pickParty(sc)
	client := registry.ClientName(sc.Rng, party.Sector)
	start, end := issueWindow(sc)

	n := 2 + sc.Rng.Intn(3) // invoices
	m := 2 + sc.Rng.Intn(2) // payments
	if n > b.maxRelations {
		n = b.maxRelations
	}

	invoices := make([]*models.Invoice, n)
	for i := 0; i < n; i++ {
		invoices[i] = b.factory.CreateInvoice(sc, InvoiceProfile{
			AmountMin: b.bounds.GroupMin,
			AmountMax: b.bounds.GroupMax,
			DateStart: start,
			DateEnd:   end,
			Party:     party,
			Client:    client,
		})
	}
	if err := b.fillInvoiceTexts(ctx, sc, s, invoices, true); err != nil {
		return err
	}

	total := decimal.Zero
	lastIssue := invoices[0].IssueDate
	for _, inv := range invoices {
		total = total.Add(inv.GrossAmount)
		if inv.IssueDate.After(lastIssue) {
			lastIssue = inv.IssueDate
		}
	}

	paid := total
	if d.Amount == models.AmountPartial {
		paid = scaleAmount(sc.Rng, total, 0.5, 0.9)
	}
	payAmounts, err := splitAmount(sc.Rng, paid, m)
	if err != nil {
		return err
	}

	payments := make([]*models.Payment, m)
	reqs := make([]textgen.PaymentTextRequest, m)
	offset := 0
	if d.Timing == models.TimingDelayed {
		offset = 91
	}
	for j := 0; j < m; j++ {
		offset += 5 + sc.Rng.Intn(timingWindowDays(d.Timing)/m)
		payments[j] = b.factory.CreatePayment(sc, PaymentProfile{
			Amount: payAmounts[j],
			Date:   lastIssue.AddDate(0, 0, offset),
			Payer:  client,
			IBAN:   registry.IBAN(sc.Rng),
		})
	}

	// Pour each payment into the invoices in order. Every payment is fully
	// applied; invoice coverage never exceeds gross.
	i := 0
	remainingDue := invoices[0].GrossAmount
	for j := 0; j < m; j++ {
		remainingPay := payAmounts[j]
		var covered []string
		for remainingPay.IsPositive() {
			if i >= n {
				return constraintErrf("paid %s exceeds group total %s", paid, total)
			}
			piece := decimal.Min(remainingPay, remainingDue)
			s.Links = append(s.Links, &models.PaymentLink{
				InvoiceID:     invoices[i].ID,
				PaymentID:     payments[j].ID,
				AmountApplied: piece,
			})
			s.note(invoices[i].ID, payments[j].ID,
				fmt.Sprintf("Cross allocation payment %d/%d", j+1, m))
			covered = append(covered, invoices[i].InvoiceNumber)
			remainingPay = remainingPay.Sub(piece)
			remainingDue = remainingDue.Sub(piece)
			if remainingDue.IsZero() && i < n-1 {
				i++
				remainingDue = invoices[i].GrossAmount
			} else if remainingDue.IsZero() {
				i++
			}
		}
		reqs[j] = textgen.PaymentTextRequest{
			Seq:            sc.Slot*100 + j + 1,
			Provider:       party.Name,
			Amount:         payAmounts[j],
			ServiceType:    invoices[0].ServiceType,
			InvoiceNumbers: covered,
			IncludeInvoice: includeInvoiceRef(sc, d.Quality),
		}
	}

	if err := b.fillPaymentTexts(ctx, sc, s, payments, reqs); err != nil {
		return err
	}
	s.Invoices = invoices
	s.Payments = payments
	return nil
}
