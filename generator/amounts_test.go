package generator

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSplitAmountSumsExactly(t *testing.T) {
	total := d("900.00")
	for seed := int64(0); seed < 10; seed++ {
		for n := 2; n <= 6; n++ {
			rng := rand.New(rand.NewSource(seed))
			parts, err := splitAmount(rng, total, n)
			if err != nil {
				t.Fatalf("seed %d n %d: %v", seed, n, err)
			}
			sum := decimal.Zero
			for i, p := range parts {
				if !p.IsPositive() {
					t.Fatalf("seed %d n %d: part %d = %s is not positive", seed, n, i, p)
				}
				if p.Exponent() < -2 {
					t.Fatalf("seed %d n %d: part %d = %s has sub-cent precision", seed, n, i, p)
				}
				sum = sum.Add(p)
			}
			if !sum.Equal(total) {
				t.Fatalf("seed %d n %d: parts sum to %s, want %s", seed, n, sum, total)
			}
		}
	}
}

func TestSplitAmountTooSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := splitAmount(rng, d("0.02"), 5); err == nil {
		t.Fatal("expected constraint error splitting 0.02 into 5 parts")
	}
}

func TestAllocateProportionalExact(t *testing.T) {
	out, err := allocateProportional(d("784.00"), []decimal.Decimal{d("500.00"), d("300.00")})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !out[0].Equal(d("490.00")) || !out[1].Equal(d("294.00")) {
		t.Fatalf("got shares %s / %s, want 490.00 / 294.00", out[0], out[1])
	}
	delta := d("500.00").Sub(out[0]).Add(d("300.00").Sub(out[1]))
	if !delta.Equal(d("16.00")) {
		t.Fatalf("discount delta %s, want 16.00", delta)
	}
}

func TestAllocateProportionalSums(t *testing.T) {
	weights := []decimal.Decimal{d("123.45"), d("678.90"), d("11.11"), d("999.99")}
	amount := d("1700.00")
	out, err := allocateProportional(amount, weights)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	sum := decimal.Zero
	for i, share := range out {
		if !share.IsPositive() {
			t.Fatalf("share %d = %s is not positive", i, share)
		}
		sum = sum.Add(share)
	}
	if !sum.Equal(amount) {
		t.Fatalf("shares sum to %s, want %s", sum, amount)
	}
}

func TestRandAmountBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	min, max := d("100.00"), d("5000.00")
	for i := 0; i < 200; i++ {
		a := randAmount(rng, min, max)
		if a.LessThan(min) || a.GreaterThan(max) {
			t.Fatalf("amount %s outside [%s, %s]", a, min, max)
		}
		if a.Exponent() < -2 {
			t.Fatalf("amount %s has sub-cent precision", a)
		}
	}
}
