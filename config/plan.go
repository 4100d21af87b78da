package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/flopayments/recongen/models"
)

// SubPatternKind distinguishes relation-building scenarios from the
// disturbance shapes that create deliberately unlinked entities.
type SubPatternKind string

const (
	KindRelation          SubPatternKind = "relation"
	KindStandaloneInvoice SubPatternKind = "standalone_invoice"
	KindStandalonePayment SubPatternKind = "standalone_payment"
	KindOutlierDecoy      SubPatternKind = "outlier_decoy"
	KindTextualDecoy      SubPatternKind = "textual_decoy"
)

// QualityWeight is an ordered (level, weight) pair. A slice keeps sampling
// deterministic; a map would not.
type QualityWeight struct {
	Level  models.QualityLevel `json:"level" validate:"required"`
	Weight float64             `json:"weight" validate:"gte=0"`
}

type SubPatternPlan struct {
	Name        string               `json:"name" validate:"required"`
	Percent     float64              `json:"percent" validate:"gt=0,lte=100"`
	Kind        SubPatternKind       `json:"kind,omitempty"`
	Cardinality models.Cardinality   `json:"cardinality,omitempty"`
	Timing      models.TimingPattern `json:"timing,omitempty"`
	Amount      models.AmountPattern `json:"amount,omitempty"`
	// Holdout routes every slot of this sub-pattern into the holdout
	// partition instead of the train/validation/test split.
	Holdout bool `json:"holdout,omitempty"`
}

type BlockPlan struct {
	Name        string           `json:"name" validate:"required"`
	Percent     float64          `json:"percent" validate:"gt=0,lte=100"`
	NoiseLevel  float64          `json:"noise_level" validate:"gte=0,lte=1"`
	Quality     []QualityWeight  `json:"quality" validate:"required,min=1,dive"`
	SubPatterns []SubPatternPlan `json:"sub_patterns" validate:"required,min=1,dive"`
}

type PartitionPlan struct {
	Train      float64 `json:"train" validate:"gt=0,lt=1"`
	Validation float64 `json:"validation" validate:"gt=0,lt=1"`
	Test       float64 `json:"test" validate:"gt=0,lt=1"`
}

// AmountProfile holds money bounds as user-formatted strings so plans can be
// written by hand ("EUR 5.000", "1,500.00").
type AmountProfile struct {
	InvoiceMin     string `json:"invoice_min" validate:"required"`
	InvoiceMax     string `json:"invoice_max" validate:"required"`
	InstallmentMin string `json:"installment_min" validate:"required"`
	InstallmentMax string `json:"installment_max" validate:"required"`
	GroupMin       string `json:"group_min" validate:"required"`
	GroupMax       string `json:"group_max" validate:"required"`
}

// Plan is the full generation configuration. Same plan + same seed must
// yield byte-identical output tables.
type Plan struct {
	TotalSize     int     `json:"total_size" validate:"required,gt=0"`
	Seed          int64   `json:"seed"`
	ReferenceDate string  `json:"reference_date" validate:"required,datetime=2006-01-02"`
	Workers       int     `json:"workers" validate:"gte=0"`
	BatchSize     int     `json:"batch_size" validate:"gt=0"`
	NumCompanies  int     `json:"num_companies" validate:"gt=0"`
	MaxRelations  int     `json:"max_relations" validate:"gte=2,lte=10"`
	TaxRate       float64 `json:"tax_rate" validate:"gt=0,lt=1"`

	Amounts    AmountProfile `json:"amounts"`
	Blocks     []BlockPlan   `json:"blocks" validate:"required,min=1,dive"`
	Partitions PartitionPlan `json:"partitions"`
}

const percentTolerance = 1e-6

var validate = validator.New()

// Validate runs struct-tag validation plus the sum checks the tags cannot
// express: block percentages and per-block sub-pattern percentages must sum
// to 100, partition fractions to 1.
func (p *Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("plan validation: %w", err)
	}

	var blockSum float64
	for _, b := range p.Blocks {
		blockSum += b.Percent
		var subSum float64
		for _, sp := range b.SubPatterns {
			subSum += sp.Percent
			if kindOf(sp) == KindRelation {
				if _, err := models.ParseCardinality(string(sp.Cardinality)); err != nil {
					return fmt.Errorf("block %s sub-pattern %s: %w", b.Name, sp.Name, err)
				}
				if _, err := models.ParseTimingPattern(string(sp.Timing)); err != nil {
					return fmt.Errorf("block %s sub-pattern %s: %w", b.Name, sp.Name, err)
				}
				if _, err := models.ParseAmountPattern(string(sp.Amount)); err != nil {
					return fmt.Errorf("block %s sub-pattern %s: %w", b.Name, sp.Name, err)
				}
			}
		}
		if math.Abs(subSum-100) > percentTolerance {
			return fmt.Errorf("block %s: sub-pattern percentages sum to %.4f, want 100", b.Name, subSum)
		}
		var qSum float64
		for _, q := range b.Quality {
			if _, err := models.ParseQualityLevel(string(q.Level)); err != nil {
				return fmt.Errorf("block %s: %w", b.Name, err)
			}
			qSum += q.Weight
		}
		if qSum <= 0 {
			return fmt.Errorf("block %s: quality weights sum to zero", b.Name)
		}
	}
	if math.Abs(blockSum-100) > percentTolerance {
		return fmt.Errorf("block percentages sum to %.4f, want 100", blockSum)
	}

	pSum := p.Partitions.Train + p.Partitions.Validation + p.Partitions.Test
	if math.Abs(pSum-1) > percentTolerance {
		return fmt.Errorf("partition fractions sum to %.4f, want 1", pSum)
	}
	return nil
}

func kindOf(sp SubPatternPlan) SubPatternKind {
	if sp.Kind == "" {
		return KindRelation
	}
	return sp.Kind
}

// KindOf reports the effective kind of a sub-pattern (empty means relation).
func (sp SubPatternPlan) KindOf() SubPatternKind { return kindOf(sp) }

// Reference returns the parsed generation reference date ("now").
func (p *Plan) Reference() time.Time {
	t, _ := time.Parse("2006-01-02", p.ReferenceDate)
	return t
}

// Load reads a plan from a JSON file, applies env overrides, validates and
// returns it. Env bootstrap mirrors the rest of the codebase: godotenv first,
// then plain os.Getenv.
func Load(path string) (*Plan, error) {
	godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	plan := DefaultPlan()
	if err := json.Unmarshal(raw, plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	applyEnvOverrides(plan)
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func applyEnvOverrides(p *Plan) {
	if v := os.Getenv("RECONGEN_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.Seed = seed
		}
	}
	if v := os.Getenv("RECONGEN_TOTAL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.TotalSize = n
		}
	}
	if v := os.Getenv("RECONGEN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Workers = n
		}
	}
}

// TextServiceEndpoint returns the text-generation collaborator endpoint, or
// empty when the deterministic local fallback should be used.
func TextServiceEndpoint() string {
	godotenv.Load()
	return os.Getenv("RECONGEN_TEXT_ENDPOINT")
}

// TextServiceAPIKey returns the collaborator API key.
func TextServiceAPIKey() string {
	return os.Getenv("RECONGEN_TEXT_API_KEY")
}
