package textgen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flopayments/recongen/textgen"
	"github.com/shopspring/decimal"
)

func TestFallbackInvoiceTextDeterministic(t *testing.T) {
	req := textgen.InvoiceTextRequest{
		Seq:         42,
		IssueDate:   "2024-03-10",
		Sector:      "Consulenza IT",
		Provider:    "Rossi SRL",
		Amount:      decimal.NewFromInt(1500),
		ServiceType: "Sviluppo software",
	}
	a, err := textgen.Fallback{}.InvoiceTexts(context.Background(), []textgen.InvoiceTextRequest{req})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := textgen.Fallback{}.InvoiceTexts(context.Background(), []textgen.InvoiceTextRequest{req})
	if a[0] != b[0] {
		t.Fatalf("fallback must be deterministic: %+v vs %+v", a[0], b[0])
	}
	if a[0].InvoiceNumber != "FT2024/0042" {
		t.Errorf("invoice number = %s, want FT2024/0042", a[0].InvoiceNumber)
	}
	if !a[0].Fallback {
		t.Error("fallback flag must be set")
	}
}

func TestFallbackPaymentTextGroupReference(t *testing.T) {
	small := textgen.PaymentTextRequest{
		Provider:       "Bianchi SPA",
		IncludeInvoice: true,
		InvoiceNumbers: []string{"FT2024/0001", "FT2024/0002"},
	}
	out, err := textgen.Fallback{}.PaymentTexts(context.Background(), []textgen.PaymentTextRequest{small})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out[0].Reference, "FT2024/0001, FT2024/0002") {
		t.Errorf("small group must enumerate invoice numbers, got %q", out[0].Reference)
	}

	large := textgen.PaymentTextRequest{
		Provider:       "Bianchi SPA",
		IncludeInvoice: true,
		InvoiceNumbers: []string{"a", "b", "c", "d"},
		BillingPeriod:  "03/2024",
	}
	out, _ = textgen.Fallback{}.PaymentTexts(context.Background(), []textgen.PaymentTextRequest{large})
	if !strings.Contains(out[0].Reference, "03/2024") {
		t.Errorf("large group must use the billing period, got %q", out[0].Reference)
	}

	noRef := textgen.PaymentTextRequest{Provider: "Bianchi SPA", ServiceType: "Trasporti"}
	out, _ = textgen.Fallback{}.PaymentTexts(context.Background(), []textgen.PaymentTextRequest{noRef})
	if out[0].HasInvoice {
		t.Error("reference-free payment must not claim an invoice reference")
	}
}

type countingGen struct {
	textgen.Fallback
	calls []int
}

func (c *countingGen) InvoiceTexts(ctx context.Context, reqs []textgen.InvoiceTextRequest) ([]textgen.InvoiceText, error) {
	c.calls = append(c.calls, len(reqs))
	return c.Fallback.InvoiceTexts(ctx, reqs)
}

func TestBatchedCapsRequestSize(t *testing.T) {
	g := &countingGen{}
	b := textgen.Batched(g, 3)

	out, err := b.InvoiceTexts(context.Background(), make([]textgen.InvoiceTextRequest, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 8 {
		t.Fatalf("got %d texts, want 8", len(out))
	}
	want := []int{3, 3, 2}
	if len(g.calls) != len(want) {
		t.Fatalf("batches %v, want %v", g.calls, want)
	}
	for i := range want {
		if g.calls[i] != want[i] {
			t.Fatalf("batches %v, want %v", g.calls, want)
		}
	}
}

func TestClientFallsBackWhenUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "")
	out, err := client.PaymentTexts(context.Background(), []textgen.PaymentTextRequest{
		{Provider: "Rossi SRL", ServiceType: "Collaudi"},
	})
	if err != nil {
		t.Fatalf("client must degrade, not fail: %v", err)
	}
	if !out[0].Fallback {
		t.Error("degraded response must carry the fallback flag")
	}
}

func TestClientUsesServiceResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqs []textgen.PaymentTextRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		resp := make([]textgen.PaymentText, len(reqs))
		for i := range reqs {
			resp[i] = textgen.PaymentText{Detail: "BONIFICO", Reference: "Saldo fattura", HasInvoice: true}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "key")
	out, err := client.PaymentTexts(context.Background(), []textgen.PaymentTextRequest{
		{Provider: "Conti SAS"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Fallback {
		t.Error("service response must not be flagged as fallback")
	}
	if !out[0].HasInvoice {
		t.Error("invoice reference flag must round-trip from the service")
	}
}
