package generator

import (
	"time"

	"github.com/flopayments/recongen/config"
)

// Report summarizes one generation run. It is embedded in the exported
// metadata so a dataset stays auditable after the run is gone.
type Report struct {
	GeneratedAt    time.Time `json:"generated_at"`
	Seed           int64     `json:"seed"`
	ReferenceDate  string    `json:"reference_date"`
	TotalScenarios int       `json:"total_scenarios"`

	Invoices int `json:"invoices"`
	Payments int `json:"payments"`
	Links    int `json:"links"`
	Labels   int `json:"labels"`

	Retries       int `json:"retries"`
	TextFallbacks int `json:"text_fallbacks"`
	InvoiceRefs   int `json:"invoice_refs"`
	HoldoutSlots  int `json:"holdout_slots"`

	PerBlock      map[string]int `json:"per_block"`
	PerSubPattern map[string]int `json:"per_sub_pattern"`
	PerQuality    map[string]int `json:"per_quality"`
	PerMatchType  map[string]int `json:"per_match_type"`

	// Plan echoes the full generation configuration so a dataset can be
	// reproduced from its metadata alone.
	Plan *config.Plan `json:"plan"`
}

func BuildReport(plan *config.Plan, scenarios []*Scenario) *Report {
	r := &Report{
		GeneratedAt:    time.Now().UTC(),
		Seed:           plan.Seed,
		ReferenceDate:  plan.ReferenceDate,
		TotalScenarios: len(scenarios),
		Plan:           plan,
		PerBlock:       make(map[string]int),
		PerSubPattern:  make(map[string]int),
		PerQuality:     make(map[string]int),
		PerMatchType:   make(map[string]int),
	}
	for _, s := range scenarios {
		r.Invoices += len(s.Invoices)
		r.Payments += len(s.Payments)
		r.Links += len(s.Links)
		r.Labels += len(s.Labels)
		r.Retries += s.Retries
		r.TextFallbacks += s.TextFallbacks
		r.InvoiceRefs += s.InvoiceRefs
		if s.Holdout {
			r.HoldoutSlots++
		}
		r.PerBlock[s.Block]++
		r.PerSubPattern[s.Block+"/"+s.SubPattern]++
		r.PerQuality[string(s.Quality)]++
		for _, l := range s.Labels {
			r.PerMatchType[string(l.MatchType)]++
		}
	}
	return r
}
