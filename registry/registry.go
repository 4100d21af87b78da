// Package registry supplies company tuples (name, VAT id, IBAN, sector) to
// the entity factory. It is a collaborator boundary: callers must tolerate
// an unavailable registry and continue on the deterministic fallback.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/flopayments/recongen/models"
)

// ErrUnavailable signals that the registry collaborator is unreachable.
// Callers degrade to Fallback parties instead of stalling generation.
var ErrUnavailable = errors.New("registry: collaborator unavailable")

type Registry interface {
	// SampleParties returns n parties. Callers may re-sample the returned
	// pool with repetition, so n is a pool size, not a uniqueness bound.
	// An unreachable backend is reported by wrapping ErrUnavailable; any
	// other error is a hard failure.
	SampleParties(ctx context.Context, n int) ([]*models.Party, error)
}

// Fallback returns n deterministic placeholder parties for degraded runs.
// Records built from them carry the text-fallback flag for later backfill.
func Fallback(n int) []*models.Party {
	out := make([]*models.Party, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Party{
			ID:          fmt.Sprintf("party-fallback-%04d", i),
			Name:        fmt.Sprintf("AZIENDA PLACEHOLDER %d SRL", i+1),
			VatID:       fmt.Sprintf("IT%011d", i+1),
			BankAccount: fmt.Sprintf("IT00X0000000000%012d", i+1),
			Sector:      sectors[i%len(sectors)],
		}
	}
	return out
}
