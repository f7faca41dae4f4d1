package handler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceToCents(t *testing.T) {
	cases := []struct {
		price float64
		cents uint32
	}{
		{0, 0},
		{0.01, 1},
		{15, 1500},
		// 19.99 * 100 is 1998.9999... in float64; truncating instead
		// of rounding loses a cent.
		{19.99, 1999},
		{249.99, 24999},
		{maxPrice, maxPrice * 100},
	}
	for _, tc := range cases {
		cents, ok := priceToCents(tc.price)
		require.True(t, ok, "price %v", tc.price)
		require.Equal(t, tc.cents, cents, "price %v", tc.price)
	}
}

func TestPriceToCentsRejectsInvalid(t *testing.T) {
	for _, price := range []float64{-0.01, -500, maxPrice + 1, math.NaN(), math.Inf(1)} {
		_, ok := priceToCents(price)
		require.False(t, ok, "price %v", price)
	}
}
