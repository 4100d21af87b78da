package dataset

import (
	"fmt"
	"testing"

	"github.com/flopayments/recongen/config"
	"github.com/flopayments/recongen/generator"
)

func fakeScenarios(n, holdoutEvery int) []*generator.Scenario {
	out := make([]*generator.Scenario, n)
	for i := range out {
		out[i] = &generator.Scenario{
			Slot:       i,
			Block:      "standard",
			SubPattern: fmt.Sprintf("sp-%d", i%3),
			Holdout:    holdoutEvery > 0 && i%holdoutEvery == 0,
		}
	}
	return out
}

func TestAssemblePartitionsAreExhaustive(t *testing.T) {
	plan := config.DefaultPlan()
	scenarios := fakeScenarios(100, 10)

	a, err := Assemble(plan, scenarios, &generator.Report{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	seen := map[int]Partition{}
	total := 0
	for _, p := range a.Partitions {
		for _, s := range p.Scenarios {
			if prev, dup := seen[s.Slot]; dup {
				t.Fatalf("slot %d in both %s and %s", s.Slot, prev, p.Name)
			}
			seen[s.Slot] = p.Name
			total++
		}
	}
	if total != len(scenarios) {
		t.Fatalf("partitions hold %d scenarios, want %d", total, len(scenarios))
	}
}

func TestAssembleHoldoutRouting(t *testing.T) {
	plan := config.DefaultPlan()
	scenarios := fakeScenarios(50, 5)

	a, err := Assemble(plan, scenarios, &generator.Report{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	holdout := a.Scenarios(PartitionHoldout)
	if len(holdout) != 10 {
		t.Fatalf("got %d holdout scenarios, want 10", len(holdout))
	}
	for _, s := range holdout {
		if !s.Holdout {
			t.Fatalf("non-holdout slot %d routed to holdout", s.Slot)
		}
	}
	for _, name := range []Partition{PartitionTrain, PartitionValidation, PartitionTest} {
		for _, s := range a.Scenarios(name) {
			if s.Holdout {
				t.Fatalf("holdout slot %d leaked into %s", s.Slot, name)
			}
		}
	}
}

func TestAssembleSplitFractions(t *testing.T) {
	plan := config.DefaultPlan()
	scenarios := fakeScenarios(20, 0)

	a, err := Assemble(plan, scenarios, &generator.Report{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if n := len(a.Scenarios(PartitionTrain)); n != 14 {
		t.Fatalf("train has %d scenarios, want 14", n)
	}
	if n := len(a.Scenarios(PartitionValidation)); n != 3 {
		t.Fatalf("validation has %d scenarios, want 3", n)
	}
	if n := len(a.Scenarios(PartitionTest)); n != 3 {
		t.Fatalf("test has %d scenarios, want 3", n)
	}
}

func TestAssembleDeterministicSplit(t *testing.T) {
	plan := config.DefaultPlan()

	membership := func() map[int]Partition {
		a, err := Assemble(plan, fakeScenarios(60, 6), &generator.Report{})
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		m := map[int]Partition{}
		for _, p := range a.Partitions {
			for _, s := range p.Scenarios {
				m[s.Slot] = p.Name
			}
		}
		return m
	}

	first, second := membership(), membership()
	for slot, p := range first {
		if second[slot] != p {
			t.Fatalf("slot %d moved from %s to %s across identical assemblies", slot, p, second[slot])
		}
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	if _, err := Assemble(config.DefaultPlan(), nil, &generator.Report{}); err == nil {
		t.Fatal("expected error assembling an empty run")
	}
}
