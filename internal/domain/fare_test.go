package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFareFor(t *testing.T) {
	cases := []struct {
		name string
		in   FareInput
		want string
	}{
		{"zero distance bills one km", FareInput{FixedRate: d("0"), Multiplier: d("1"), Seats: 1, Distance: 0}, "0.3"},
		{"ten km single seat", FareInput{FixedRate: d("0"), Multiplier: d("1"), Seats: 1, Distance: 10}, "3.9"},
		{"fraction floored", FareInput{FixedRate: d("0"), Multiplier: d("1"), Seats: 1, Distance: 2.5}, "1.2"},
		{"seats and fixed rate", FareInput{FixedRate: d("1.5"), Multiplier: d("1"), Seats: 3, Distance: 10}, "13.2"},
		{"discount multiplier", FareInput{FixedRate: d("0"), Multiplier: d("0.5"), Seats: 2, Distance: 4}, "1.5"},
		{"no seats keeps fixed rate", FareInput{FixedRate: d("2"), Multiplier: d("1"), Seats: 0, Distance: 40}, "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FareFor(tc.in)
			require.NoError(t, err)
			require.Truef(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestReimbursementMatchesFare(t *testing.T) {
	in := FareInput{FixedRate: d("0.75"), Multiplier: d("1.2"), Seats: 2, Distance: 7.3}
	fare, err := FareFor(in)
	require.NoError(t, err)
	reimb, err := ReimbursementFor(in)
	require.NoError(t, err)
	require.True(t, fare.Equal(reimb))
}

func TestFareRejectsBadInput(t *testing.T) {
	_, err := FareFor(FareInput{Multiplier: d("1"), Seats: -1})
	require.True(t, IsValidation(err))

	_, err = FareFor(FareInput{Multiplier: d("1"), Seats: 1, Distance: -3})
	require.True(t, IsValidation(err))

	_, err = FareFor(FareInput{Multiplier: d("-1"), Seats: 1})
	require.True(t, IsValidation(err))
}

func TestToCredits(t *testing.T) {
	require.Equal(t, int64(390), ToCredits(d("3.9")))
	require.Equal(t, int64(1), ToCredits(d("0.005")))
	require.Equal(t, int64(0), ToCredits(d("0.004")))
	require.Equal(t, int64(0), ToCredits(d("-2")))
	require.True(t, CreditsToEuro(1320).Equal(d("13.2")))
}
