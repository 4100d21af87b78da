package utils_test

import (
	"testing"

	"github.com/flopayments/recongen/utils"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "1500.00", want: "1500"},
		{in: "1,500.00", want: "1500"},
		{in: "EUR 1500", want: "1500"},
		{in: "€ -200,50", want: "-200.5"},
		{in: "200,50", want: "200.5"},
		{in: "20,000", want: "20000"},
		{in: "  784.00 ", want: "784"},
		{in: "", err: true},
		{in: "EUR", err: true},
	}
	for _, tc := range cases {
		got, err := utils.ParseAmount(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestChunkSlice(t *testing.T) {
	chunks := utils.ChunkSlice([]int{1, 2, 3, 4, 5}, 2)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0] != 5 {
		t.Errorf("last chunk = %v, want [5]", chunks[2])
	}
	if utils.ChunkSlice([]int(nil), 2) != nil {
		t.Error("empty input should yield nil")
	}
}

func TestUniqueSlice(t *testing.T) {
	got := utils.UniqueSlice([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("UniqueSlice = %v", got)
	}
}
