//go:build unit

package output

import (
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1234.567, "R$ 1.234,57"},
		{0, "R$ 0,00"},
		{-50.5, "-R$ 50,50"},
		{1000000, "R$ 1.000.000,00"},
	}
	for _, c := range cases {
		if got := FormatCurrency(c.in); got != c.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	if got, want := FormatPercentage(0.123456), "12.35%"; got != want {
		t.Errorf("FormatPercentage(0.123456) = %q, want %q", got, want)
	}
	if got, want := FormatPercentage(0), "0.00%"; got != want {
		t.Errorf("FormatPercentage(0) = %q, want %q", got, want)
	}
}

func TestIntAndBoolToString(t *testing.T) {
	if got, want := intToString(42), "42"; got != want {
		t.Errorf("intToString(42) = %q, want %q", got, want)
	}
	if got, want := boolToString(true), "true"; got != want {
		t.Errorf("boolToString(true) = %q, want %q", got, want)
	}
	if got, want := fixed(0.1, 2), "0.10"; got != want {
		t.Errorf("fixed(0.1, 2) = %q, want %q", got, want)
	}
}
