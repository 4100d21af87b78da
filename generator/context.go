package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// slotSeedMix spreads consecutive slot indexes across the seed space.
const slotSeedMix int64 = -0x61C8864680B583EB // 0x9E3779B97F4A7C15 as two's-complement int64

// IDAllocator hands out deterministic identifiers. IDs are UUIDv5 values
// over a run namespace, keyed by (kind, slot, sequence), so every slot owns
// a disjoint range and the same run yields the same IDs.
type IDAllocator struct {
	namespace uuid.UUID
	slot      int
	seq       uint64
}

func (a *IDAllocator) Next(kind string) string {
	a.seq++
	return uuid.NewSHA1(a.namespace, []byte(fmt.Sprintf("%s-%d-%d", kind, a.slot, a.seq))).String()
}

// SlotContext carries everything one scenario slot needs: its own random
// sub-stream, its identifier allocator and the generation reference date.
// Nothing here is shared across slots, so slots parallelize freely.
type SlotContext struct {
	Slot int
	Rng  *rand.Rand
	Now  time.Time

	ids IDAllocator
}

func NewSlotContext(seed int64, slot int, now time.Time) *SlotContext {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("recongen-run-%d", seed)))
	return &SlotContext{
		Slot: slot,
		Rng:  rand.New(rand.NewSource(seed ^ (int64(slot)+1)*slotSeedMix)),
		Now:  now,
		ids: IDAllocator{
			namespace: ns,
			slot:      slot,
		},
	}
}

func (c *SlotContext) NewID(kind string) string { return c.ids.Next(kind) }

// Reseed restores the slot's random stream and allocator for a retry, so a
// rejected attempt does not leak randomness or identifiers into the next
// one beyond the attempt number itself.
func (c *SlotContext) Reseed(seed int64, attempt int) {
	c.Rng = rand.New(rand.NewSource(seed ^ (int64(c.Slot)+1)*slotSeedMix + int64(attempt)))
	c.ids.seq = uint64(attempt) << 32
}
