package models

import "fmt"

// InvoiceStatus is derived from payment coverage and the due date, never set
// directly by a generator.
type InvoiceStatus string

const (
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
)

// MatchType classifies an (invoice, payment) pair in the ground truth table.
type MatchType string

const (
	MatchTypeExact     MatchType = "exact"
	MatchTypePartial   MatchType = "partial"
	MatchTypeRelated   MatchType = "related"
	MatchTypeUnrelated MatchType = "unrelated"
)

// QualityLevel is the textual cleanliness applied to a scenario.
type QualityLevel string

const (
	QualityPerfect QualityLevel = "perfect"
	QualityFuzzy   QualityLevel = "fuzzy"
	QualityNoisy   QualityLevel = "noisy"
)

func ParseQualityLevel(s string) (QualityLevel, error) {
	switch QualityLevel(s) {
	case QualityPerfect, QualityFuzzy, QualityNoisy:
		return QualityLevel(s), nil
	}
	return "", fmt.Errorf("unknown quality level %q", s)
}

// TimingPattern controls where payment dates fall relative to the invoice
// issue date.
type TimingPattern string

const (
	// TimingStandard places payments 0-90 days after issue.
	TimingStandard TimingPattern = "standard"
	// TimingDelayed places payments more than 90 days after issue.
	TimingDelayed TimingPattern = "delayed"
	// TimingEarly places payments before the issue date (advance payment).
	TimingEarly TimingPattern = "early"
	// TimingSameDay places payments on the issue date itself.
	TimingSameDay TimingPattern = "same_day"
)

func ParseTimingPattern(s string) (TimingPattern, error) {
	switch TimingPattern(s) {
	case TimingStandard, TimingDelayed, TimingEarly, TimingSameDay:
		return TimingPattern(s), nil
	}
	return "", fmt.Errorf("unknown timing pattern %q", s)
}

// AmountPattern controls how the paid total relates to the invoiced total.
type AmountPattern string

const (
	AmountExact      AmountPattern = "exact"
	AmountPartial    AmountPattern = "partial"
	AmountExcess     AmountPattern = "excess"
	AmountDiscounted AmountPattern = "discounted"
	AmountPenalized  AmountPattern = "penalized"
)

func ParseAmountPattern(s string) (AmountPattern, error) {
	switch AmountPattern(s) {
	case AmountExact, AmountPartial, AmountExcess, AmountDiscounted, AmountPenalized:
		return AmountPattern(s), nil
	}
	return "", fmt.Errorf("unknown amount pattern %q", s)
}

// Cardinality is the shape of the invoice-to-payment relation for a scenario.
type Cardinality string

const (
	CardinalityOneToOne   Cardinality = "1:1"
	CardinalityOneToMany  Cardinality = "1:N"
	CardinalityManyToOne  Cardinality = "N:1"
	CardinalityManyToMany Cardinality = "N:M"
)

func ParseCardinality(s string) (Cardinality, error) {
	switch Cardinality(s) {
	case CardinalityOneToOne, CardinalityOneToMany, CardinalityManyToOne, CardinalityManyToMany:
		return Cardinality(s), nil
	}
	return "", fmt.Errorf("unknown cardinality %q", s)
}

// PaymentMethod mirrors the movement types seen on Italian bank statements.
type PaymentMethod string

const (
	MethodBonifico PaymentMethod = "bonifico"
	MethodRiBa     PaymentMethod = "riba"
	MethodSDD      PaymentMethod = "sdd"
	MethodAssegno  PaymentMethod = "assegno"
	MethodCarta    PaymentMethod = "carta"
)
