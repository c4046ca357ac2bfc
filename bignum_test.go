package cbor

import (
	"math/big"
	"strconv"
	"testing"
)

func TestRenderBigIntDecimal(t *testing.T) {
	if got := renderBigIntDecimal([]byte{0x01, 0x00}, false); got != "256" {
		t.Fatalf("got %q, want 256", got)
	}
	if got := renderBigIntDecimal([]byte{0x00}, true); got != "-1" {
		t.Fatalf("got %q, want -1", got)
	}
}

func TestRenderDecimalFraction(t *testing.T) {
	cases := []struct {
		exponent int64
		mantissa int64
		want     string
	}{
		{0, 5, "5"},
		{2, 5, "500"},
		{-1, 5, "0.5"},
		{-2, 27315, "273.15"},
		{-5, 3, "0.00003"},
		{-1, -5, "-0.5"},
	}
	for _, tc := range cases {
		got := renderDecimalFraction(tc.exponent, big.NewInt(tc.mantissa))
		if got != tc.want {
			t.Errorf("renderDecimalFraction(%d, %d) = %q, want %q", tc.exponent, tc.mantissa, got, tc.want)
		}
	}
}

func TestRenderBigFloatRoundTrips(t *testing.T) {
	cases := []struct {
		exponent int64
		mantissa int64
		want     float64
	}{
		{0, 1, 1},
		{3, 1, 8},
		{-1, 3, 1.5},
		{1, 3, 6},
	}
	for _, tc := range cases {
		s := renderBigFloat(tc.exponent, big.NewInt(tc.mantissa))
		got, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q): %v", s, err)
		}
		if got != tc.want {
			t.Errorf("renderBigFloat(%d, %d) = %q (%v), want %v", tc.exponent, tc.mantissa, s, got, tc.want)
		}
	}
}

func TestMinLengthForStringRef(t *testing.T) {
	cases := []struct {
		size int
		want int
	}{
		{0, 3},
		{23, 3},
		{24, 4},
		{255, 4},
		{256, 5},
		{65535, 5},
		{65536, 7},
	}
	for _, tc := range cases {
		if got := minLengthForStringRef(tc.size); got != tc.want {
			t.Errorf("minLengthForStringRef(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}
