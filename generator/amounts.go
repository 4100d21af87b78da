package generator

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

var (
	centStep = decimal.New(1, -2)
	one      = decimal.NewFromInt(1)
)

// randAmount draws a two-decimal amount uniformly from [min, max].
func randAmount(rng *rand.Rand, min, max decimal.Decimal) decimal.Decimal {
	if max.LessThanOrEqual(min) {
		return min.Round(2)
	}
	span := max.Sub(min)
	return min.Add(span.Mul(decimal.NewFromFloat(rng.Float64()))).Round(2)
}

// scaleAmount multiplies by a uniform factor in [lo, hi] and rounds to cents.
func scaleAmount(rng *rand.Rand, amount decimal.Decimal, lo, hi float64) decimal.Decimal {
	factor := lo + rng.Float64()*(hi-lo)
	return amount.Mul(decimal.NewFromFloat(factor)).Round(2)
}

// splitAmount divides total into n strictly positive two-decimal parts that
// sum to total exactly. The rounding remainder lands on the last part.
// Fails with a ScenarioConstraintError when total is too small to split.
func splitAmount(rng *rand.Rand, total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, constraintErrf("cannot split into %d parts", n)
	}
	if total.LessThan(centStep.Mul(decimal.NewFromInt(int64(n)))) {
		return nil, constraintErrf("total %s too small for %d positive parts", total, n)
	}

	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		weights[i] = 0.5 + rng.Float64()
		sum += weights[i]
	}

	parts := make([]decimal.Decimal, n)
	remaining := total
	for i := 0; i < n-1; i++ {
		part := total.Mul(decimal.NewFromFloat(weights[i] / sum)).Round(2)
		if !part.IsPositive() || part.GreaterThanOrEqual(remaining) {
			return nil, constraintErrf("rounding collapsed part %d of %s", i, total)
		}
		parts[i] = part
		remaining = remaining.Sub(part)
	}
	if !remaining.IsPositive() {
		return nil, constraintErrf("residual part of %s is not positive", total)
	}
	parts[n-1] = remaining
	return parts, nil
}

// allocateProportional distributes amount across weights, two decimals,
// summing to amount exactly. Used for group payments covering several
// invoices in proportion to their gross amounts.
func allocateProportional(amount decimal.Decimal, weights []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return nil, constraintErrf("no weights for allocation")
	}
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	if !total.IsPositive() {
		return nil, constraintErrf("weights sum to %s", total)
	}

	out := make([]decimal.Decimal, len(weights))
	remaining := amount
	for i := 0; i < len(weights)-1; i++ {
		share := amount.Mul(weights[i]).Div(total).Round(2)
		if !share.IsPositive() || share.GreaterThanOrEqual(remaining) {
			return nil, constraintErrf("allocation collapsed share %d of %s", i, amount)
		}
		out[i] = share
		remaining = remaining.Sub(share)
	}
	if !remaining.IsPositive() {
		return nil, constraintErrf("residual allocation of %s is not positive", amount)
	}
	out[len(weights)-1] = remaining
	return out, nil
}
