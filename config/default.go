package config

import "github.com/flopayments/recongen/models"

// DefaultPlan mirrors the historical generation defaults: four blocks
// (Standard 40, Complex 35, Ambiguous 15, Disturbance 10) with timing
// spread standard/delayed/early/same-day and a mostly-exact amount mix.
func DefaultPlan() *Plan {
	return &Plan{
		TotalSize:     1000,
		Seed:          1,
		ReferenceDate: "2025-06-30",
		Workers:       4,
		BatchSize:     10,
		NumCompanies:  20,
		MaxRelations:  10,
		TaxRate:       0.22,
		Amounts: AmountProfile{
			InvoiceMin:     "100.00",
			InvoiceMax:     "5000.00",
			InstallmentMin: "2000.00",
			InstallmentMax: "15000.00",
			GroupMin:       "200.00",
			GroupMax:       "2000.00",
		},
		Partitions: PartitionPlan{Train: 0.70, Validation: 0.15, Test: 0.15},
		Blocks: []BlockPlan{
			{
				Name:       "standard",
				Percent:    40,
				NoiseLevel: 0.05,
				Quality: []QualityWeight{
					{Level: models.QualityPerfect, Weight: 0.8},
					{Level: models.QualityFuzzy, Weight: 0.2},
				},
				SubPatterns: []SubPatternPlan{
					{Name: "perfect_1_1", Percent: 50, Cardinality: models.CardinalityOneToOne, Timing: models.TimingStandard, Amount: models.AmountExact},
					{Name: "same_day_1_1", Percent: 15, Cardinality: models.CardinalityOneToOne, Timing: models.TimingSameDay, Amount: models.AmountExact},
					{Name: "delayed_1_1", Percent: 15, Cardinality: models.CardinalityOneToOne, Timing: models.TimingDelayed, Amount: models.AmountExact},
					{Name: "early_1_1", Percent: 10, Cardinality: models.CardinalityOneToOne, Timing: models.TimingEarly, Amount: models.AmountExact},
					{Name: "discounted_1_1", Percent: 5, Cardinality: models.CardinalityOneToOne, Timing: models.TimingStandard, Amount: models.AmountDiscounted},
					{Name: "overpaid_1_1", Percent: 5, Cardinality: models.CardinalityOneToOne, Timing: models.TimingStandard, Amount: models.AmountExcess},
				},
			},
			{
				Name:       "complex",
				Percent:    35,
				NoiseLevel: 0.10,
				Quality: []QualityWeight{
					{Level: models.QualityPerfect, Weight: 0.6},
					{Level: models.QualityFuzzy, Weight: 0.3},
					{Level: models.QualityNoisy, Weight: 0.1},
				},
				SubPatterns: []SubPatternPlan{
					{Name: "installments_1_n", Percent: 40, Cardinality: models.CardinalityOneToMany, Timing: models.TimingStandard, Amount: models.AmountExact},
					{Name: "partial_1_n", Percent: 15, Cardinality: models.CardinalityOneToMany, Timing: models.TimingStandard, Amount: models.AmountPartial},
					{Name: "group_payment_n_1", Percent: 30, Cardinality: models.CardinalityManyToOne, Timing: models.TimingStandard, Amount: models.AmountExact},
					{Name: "group_discount_n_1", Percent: 5, Cardinality: models.CardinalityManyToOne, Timing: models.TimingStandard, Amount: models.AmountDiscounted, Holdout: true},
					{Name: "cross_n_m", Percent: 10, Cardinality: models.CardinalityManyToMany, Timing: models.TimingStandard, Amount: models.AmountPartial},
				},
			},
			{
				Name:       "ambiguous",
				Percent:    15,
				NoiseLevel: 0.60,
				Quality: []QualityWeight{
					{Level: models.QualityFuzzy, Weight: 0.5},
					{Level: models.QualityNoisy, Weight: 0.5},
				},
				SubPatterns: []SubPatternPlan{
					{Name: "fuzzy_reference_1_1", Percent: 40, Cardinality: models.CardinalityOneToOne, Timing: models.TimingStandard, Amount: models.AmountExact},
					{Name: "duplicate_amount_1_1", Percent: 30, Cardinality: models.CardinalityOneToOne, Timing: models.TimingStandard, Amount: models.AmountExact},
					{Name: "missing_reference_1_n", Percent: 30, Cardinality: models.CardinalityOneToMany, Timing: models.TimingStandard, Amount: models.AmountExact},
				},
			},
			{
				Name:       "disturbance",
				Percent:    10,
				NoiseLevel: 1.0,
				Quality: []QualityWeight{
					{Level: models.QualityNoisy, Weight: 1.0},
				},
				SubPatterns: []SubPatternPlan{
					{Name: "standalone_invoices", Percent: 40, Kind: KindStandaloneInvoice},
					{Name: "standalone_payments", Percent: 30, Kind: KindStandalonePayment},
					{Name: "outlier_decoys", Percent: 20, Kind: KindOutlierDecoy, Holdout: true},
					{Name: "textual_decoys", Percent: 10, Kind: KindTextualDecoy, Holdout: true},
				},
			},
		},
	}
}
