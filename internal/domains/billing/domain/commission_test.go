package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateCommission_SplitTable(t *testing.T) {
	cases := []struct {
		category string
		amount   int64
		platform int64
		partner  int64
	}{
		{"course", 1000000, 150000, 850000},
		{"document", 1000000, 200000, 800000},
		{"subscription", 1000000, 100000, 900000},
		{"membership", 1000000, 250000, 750000},
		// Unknown category falls back to the first configured rate.
		{"ebook", 1000000, 150000, 850000},
	}
	for _, tc := range cases {
		split := CalculateCommission(tc.amount, "partner-1", tc.category)
		require.Equal(t, tc.platform, split.PlatformShare, "category %s", tc.category)
		require.Equal(t, tc.partner, split.PartnerShare, "category %s", tc.category)
	}
}

func TestCalculateCommission_RemainderGoesToPartner(t *testing.T) {
	// 15% of 333 is 49.95, platform rounds half-up to 50; the partner takes
	// the rest so shares always reconcile to the gross amount.
	split := CalculateCommission(333, "partner-1", "course")
	require.Equal(t, int64(50), split.PlatformShare)
	require.Equal(t, int64(283), split.PartnerShare)
	require.Equal(t, split.Gross, split.PlatformShare+split.PartnerShare)
}

func TestCalculateCommission_Reconciles(t *testing.T) {
	for amount := int64(0); amount < 500; amount++ {
		for _, category := range []string{"course", "document", "subscription", "membership"} {
			split := CalculateCommission(amount, "p", category)
			require.Equal(t, amount, split.PlatformShare+split.PartnerShare)
		}
	}
}
