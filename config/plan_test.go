package config_test

import (
	"testing"

	"github.com/flopayments/recongen/config"
)

func TestDefaultPlanValidates(t *testing.T) {
	plan := config.DefaultPlan()
	if err := plan.Validate(); err != nil {
		t.Fatalf("default plan must validate: %v", err)
	}
	if plan.Reference().IsZero() {
		t.Fatal("reference date must parse")
	}
}

func TestValidateRejectsBadBlockSum(t *testing.T) {
	plan := config.DefaultPlan()
	plan.Blocks[0].Percent = 41
	if err := plan.Validate(); err == nil {
		t.Fatal("expected error when block percentages do not sum to 100")
	}
}

func TestValidateRejectsBadSubPatternSum(t *testing.T) {
	plan := config.DefaultPlan()
	plan.Blocks[1].SubPatterns[0].Percent = 45
	if err := plan.Validate(); err == nil {
		t.Fatal("expected error when sub-pattern percentages do not sum to 100")
	}
}

func TestValidateRejectsBadPartitions(t *testing.T) {
	plan := config.DefaultPlan()
	plan.Partitions.Test = 0.2
	if err := plan.Validate(); err == nil {
		t.Fatal("expected error when partition fractions do not sum to 1")
	}
}

func TestValidateRejectsUnknownQuality(t *testing.T) {
	plan := config.DefaultPlan()
	plan.Blocks[0].Quality[0].Level = "pristine"
	if err := plan.Validate(); err == nil {
		t.Fatal("expected error for unknown quality level")
	}
}

func TestValidateRejectsUnknownCardinality(t *testing.T) {
	plan := config.DefaultPlan()
	plan.Blocks[0].SubPatterns[0].Cardinality = "2:2"
	if err := plan.Validate(); err == nil {
		t.Fatal("expected error for unknown cardinality")
	}
}
