package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/flopayments/recongen/appctx"
	"github.com/flopayments/recongen/config"
	"github.com/flopayments/recongen/models"
	"github.com/flopayments/recongen/registry"
	"github.com/flopayments/recongen/textgen"
)

// maxSlotAttempts bounds retries per slot. Exhaustion is fatal for the run:
// under-filling a quota would invalidate the declared class balance.
const maxSlotAttempts = 8

// SlotSpec is one planned scenario slot.
type SlotSpec struct {
	Index      int
	Descriptor Descriptor
	Quality    []config.QualityWeight
}

// Scheduler turns a plan into an exact slot allocation and drives the
// builder, injector and synthesizer over it.
type Scheduler struct {
	plan     *config.Plan
	reg      registry.Registry
	text     textgen.Generator
	injector Injector
	logger   *logrus.Logger
}

func NewScheduler(plan *config.Plan, reg registry.Registry, text textgen.Generator) *Scheduler {
	return &Scheduler{
		plan:   plan,
		reg:    reg,
		text:   text,
		logger: config.GetLogger(),
	}
}

// LargestRemainder apportions total across weights into integers that sum to
// total exactly. Ties go to the earlier index, so allocation is stable.
func LargestRemainder(total int, weights []float64) []int {
	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}
	counts := make([]int, len(weights))
	if total <= 0 || weightSum <= 0 {
		return counts
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(weights))
	assigned := 0
	for i, w := range weights {
		share := float64(total) * w / weightSum
		counts[i] = int(share)
		assigned += counts[i]
		rems[i] = rem{idx: i, frac: share - float64(counts[i])}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; i < total-assigned; i++ {
		counts[rems[i%len(rems)].idx]++
	}
	return counts
}

// PlanSlots expands the plan into the exact, ordered slot list. Slot order
// is deterministic: blocks in plan order, sub-patterns in block order,
// repeated by their allocated counts.
func (sch *Scheduler) PlanSlots() []SlotSpec {
	blockWeights := make([]float64, len(sch.plan.Blocks))
	for i, b := range sch.plan.Blocks {
		blockWeights[i] = b.Percent
	}
	blockCounts := LargestRemainder(sch.plan.TotalSize, blockWeights)

	var slots []SlotSpec
	for bi, block := range sch.plan.Blocks {
		subWeights := make([]float64, len(block.SubPatterns))
		for si, sp := range block.SubPatterns {
			subWeights[si] = sp.Percent
		}
		subCounts := LargestRemainder(blockCounts[bi], subWeights)
		for si, sp := range block.SubPatterns {
			for k := 0; k < subCounts[si]; k++ {
				slots = append(slots, SlotSpec{
					Index: len(slots),
					Descriptor: Descriptor{
						Block:       block.Name,
						SubPattern:  sp.Name,
						Kind:        sp.KindOf(),
						Cardinality: sp.Cardinality,
						Timing:      sp.Timing,
						Amount:      sp.Amount,
						NoiseLevel:  block.NoiseLevel,
						Holdout:     sp.Holdout,
					},
					Quality: block.Quality,
				})
			}
		}
	}
	return slots
}

// Run generates every slot, in parallel across workers, and returns the
// committed scenarios in slot order plus the generation report. A failed
// slot fails the whole run; partial results are discarded, never emitted.
func (sch *Scheduler) Run(ctx context.Context) ([]*Scenario, *Report, error) {
	ctx = appctx.Set(ctx, appctx.ContextKeyRunId, fmt.Sprintf("seed-%d", sch.plan.Seed))

	parties, err := sch.reg.SampleParties(ctx, sch.plan.NumCompanies)
	if err != nil {
		if !errors.Is(err, registry.ErrUnavailable) {
			return nil, nil, err
		}
		// Degraded continue: placeholder parties, flagged for backfill.
		config.LogError(sch.logger, "generator", "Run", "registry unavailable, using fallback parties", sch.plan.NumCompanies, err)
		parties = registry.Fallback(sch.plan.NumCompanies)
	}

	bounds, err := ParseAmountBounds(sch.plan.Amounts)
	if err != nil {
		return nil, nil, err
	}
	text := textgen.Batched(sch.text, sch.plan.BatchSize)
	builder := NewBuilder(NewFactory(sch.plan.TaxRate), text, parties, bounds, sch.plan.MaxRelations)

	slots := sch.PlanSlots()
	results := make([]*Scenario, len(slots))

	workers := sch.plan.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, spec := range slots {
		spec := spec
		g.Go(func() error {
			s, err := sch.runSlot(gctx, builder, spec)
			if err != nil {
				return err
			}
			results[spec.Index] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if err := sch.audit(results); err != nil {
		return nil, nil, err
	}

	report := BuildReport(sch.plan, results)
	sch.logger.WithFields(logrus.Fields{
		"scenarios": report.TotalScenarios,
		"invoices":  report.Invoices,
		"payments":  report.Payments,
		"labels":    report.Labels,
		"retries":   report.Retries,
	}).Info("generation complete")
	return results, report, nil
}

// runSlot builds one slot with bounded retries. The slot's records commit
// atomically: either the whole scenario comes back or nothing does.
func (sch *Scheduler) runSlot(ctx context.Context, builder *Builder, spec SlotSpec) (*Scenario, error) {
	ctx = appctx.Set(ctx, appctx.ContextKeySlotIndex, spec.Index)
	ctx = appctx.Set(ctx, appctx.ContextKeyBlock, spec.Descriptor.Block)
	ctx = appctx.Set(ctx, appctx.ContextKeySubPattern, spec.Descriptor.SubPattern)

	var lastErr error
	for attempt := 0; attempt < maxSlotAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sc := NewSlotContext(sch.plan.Seed, spec.Index, sch.plan.Reference())
		sc.Reseed(sch.plan.Seed, attempt)

		d := spec.Descriptor
		d.Quality = sampleQuality(sc, spec.Quality)

		s, err := builder.Build(ctx, sc, d)
		if err != nil {
			var cerr *ScenarioConstraintError
			if errors.As(err, &cerr) {
				lastErr = err
				sch.logSlotRetry(ctx, attempt, err)
				continue
			}
			return nil, err
		}

		sch.injector.Apply(sc, s, d.NoiseLevel)
		SynthesizeLabels(s)
		s.Retries = attempt

		if cerr := s.checkConsistency(); cerr != nil {
			// Noise or synthesis broke a committed invariant: a defect,
			// not a retryable sample.
			return nil, &InvariantViolationError{Detail: fmt.Sprintf("slot %d: %v", spec.Index, cerr)}
		}
		return s, nil
	}
	return nil, &QuotaExhaustionError{
		Block:      spec.Descriptor.Block,
		SubPattern: spec.Descriptor.SubPattern,
		Slot:       spec.Index,
		Attempts:   maxSlotAttempts,
		LastErr:    lastErr,
	}
}

func (sch *Scheduler) logSlotRetry(ctx context.Context, attempt int, err error) {
	run, _ := appctx.GetString(ctx, appctx.ContextKeyRunId)
	slot, _ := appctx.GetInt(ctx, appctx.ContextKeySlotIndex)
	block, _ := appctx.GetString(ctx, appctx.ContextKeyBlock)
	sub, _ := appctx.GetString(ctx, appctx.ContextKeySubPattern)
	sch.logger.WithFields(logrus.Fields{
		"run":         run,
		"slot":        slot,
		"block":       block,
		"sub_pattern": sub,
		"attempt":     attempt,
	}).Debug(err.Error())
}

func sampleQuality(sc *SlotContext, weights []config.QualityWeight) models.QualityLevel {
	if len(weights) == 0 {
		return models.QualityPerfect
	}
	w := make([]float64, len(weights))
	for i, q := range weights {
		w[i] = q.Weight
	}
	return weights[weightedIndex(sc, w)].Level
}

// audit re-checks every committed scenario and cross-slot identifier
// disjointness. A failure here means a generator defect; the run aborts
// rather than emitting inconsistent ground truth.
func (sch *Scheduler) audit(scenarios []*Scenario) error {
	seen := make(map[string]int)
	for _, s := range scenarios {
		if err := s.checkConsistency(); err != nil {
			return &InvariantViolationError{Detail: fmt.Sprintf("slot %d (%s/%s): %v", s.Slot, s.Block, s.SubPattern, err)}
		}
		for _, inv := range s.Invoices {
			if prev, dup := seen[inv.ID]; dup {
				return &InvariantViolationError{Detail: fmt.Sprintf("invoice id %s shared by slots %d and %d", inv.ID, prev, s.Slot)}
			}
			seen[inv.ID] = s.Slot
		}
		for _, p := range s.Payments {
			if prev, dup := seen[p.ID]; dup {
				return &InvariantViolationError{Detail: fmt.Sprintf("payment id %s shared by slots %d and %d", p.ID, prev, s.Slot)}
			}
			seen[p.ID] = s.Slot
		}
	}
	return nil
}
