package textgen

import (
	"context"

	"github.com/flopayments/recongen/utils"
)

// batched caps the batch size sent to the underlying generator so remote
// prompts stay within the service's request limits.
type batched struct {
	inner Generator
	size  int
}

func Batched(g Generator, size int) Generator {
	if size <= 0 {
		return g
	}
	return &batched{inner: g, size: size}
}

func (b *batched) InvoiceTexts(ctx context.Context, reqs []InvoiceTextRequest) ([]InvoiceText, error) {
	out := make([]InvoiceText, 0, len(reqs))
	for _, chunk := range utils.ChunkSlice(reqs, b.size) {
		texts, err := b.inner.InvoiceTexts(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, texts...)
	}
	return out, nil
}

func (b *batched) PaymentTexts(ctx context.Context, reqs []PaymentTextRequest) ([]PaymentText, error) {
	out := make([]PaymentText, 0, len(reqs))
	for _, chunk := range utils.ChunkSlice(reqs, b.size) {
		texts, err := b.inner.PaymentTexts(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, texts...)
	}
	return out, nil
}
