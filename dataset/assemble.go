// Package dataset turns committed scenarios into partitioned, exportable
// tables. Partitioning is scenario-atomic: every entity and label of one
// scenario lands in the same partition, so no relation is ever split across
// train and test.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/flopayments/recongen/config"
	"github.com/flopayments/recongen/generator"
)

type Partition string

const (
	PartitionTrain      Partition = "train"
	PartitionValidation Partition = "validation"
	PartitionTest       Partition = "test"
	PartitionHoldout    Partition = "holdout"
)

// PartitionSet is one partition's scenarios, in assembly order.
type PartitionSet struct {
	Name      Partition
	Scenarios []*generator.Scenario
}

// Assembled is the final dataset: ordered partitions plus the run report.
type Assembled struct {
	Partitions []PartitionSet
	Report     *generator.Report
}

// Scenarios returns the partition's scenarios by name, nil when empty.
func (a *Assembled) Scenarios(name Partition) []*generator.Scenario {
	for _, p := range a.Partitions {
		if p.Name == name {
			return p.Scenarios
		}
	}
	return nil
}

// Assemble routes holdout-flagged scenarios into their own partition, then
// splits the remainder train/validation/test by the plan fractions. The
// shuffle is seeded from the plan, so the same run yields the same split.
func Assemble(plan *config.Plan, scenarios []*generator.Scenario, report *generator.Report) (*Assembled, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("assemble: no scenarios to partition")
	}

	var pool, holdout []*generator.Scenario
	for _, s := range scenarios {
		if s.Holdout {
			holdout = append(holdout, s)
		} else {
			pool = append(pool, s)
		}
	}

	shuffled := make([]*generator.Scenario, len(pool))
	copy(shuffled, pool)
	rng := rand.New(rand.NewSource(plan.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	counts := generator.LargestRemainder(len(shuffled), []float64{
		plan.Partitions.Train,
		plan.Partitions.Validation,
		plan.Partitions.Test,
	})

	train := shuffled[:counts[0]]
	validation := shuffled[counts[0] : counts[0]+counts[1]]
	test := shuffled[counts[0]+counts[1]:]

	return &Assembled{
		Report: report,
		Partitions: []PartitionSet{
			{Name: PartitionTrain, Scenarios: train},
			{Name: PartitionValidation, Scenarios: validation},
			{Name: PartitionTest, Scenarios: test},
			{Name: PartitionHoldout, Scenarios: holdout},
		},
	}, nil
}
