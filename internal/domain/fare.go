package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	// BaseCost is the price in euro per km per seat.
	BaseCost = decimal.RequireFromString("0.30")

	distanceFactor = decimal.RequireFromString("1.2")
	creditsPerEuro = decimal.NewFromInt(100)
)

// FareInput describes one ride priced under one perk.
type FareInput struct {
	FixedRate  decimal.Decimal
	Multiplier decimal.Decimal
	Seats      int
	Distance   float64 // km
}

func (in FareInput) validate() error {
	if in.Seats < 0 {
		return ValidationError{Field: "seats", Msg: "must not be negative"}
	}
	if in.Distance < 0 || math.IsNaN(in.Distance) || math.IsInf(in.Distance, 0) {
		return ValidationError{Field: "distance", Msg: "must be a non-negative number"}
	}
	if in.Multiplier.IsNegative() {
		return ValidationError{Field: "multiplier", Msg: "must not be negative"}
	}
	return nil
}

// billedKm rounds the driven distance the way riders are billed:
// floor(1 + 1.2 * distance).
func billedKm(distance float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(distanceFactor.Mul(decimal.NewFromFloat(distance))).Floor()
}

func price(in FareInput) (decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return decimal.Zero, err
	}
	variable := in.Multiplier.
		Mul(decimal.NewFromInt(int64(in.Seats))).
		Mul(billedKm(in.Distance)).
		Mul(BaseCost)
	return in.FixedRate.Add(variable), nil
}

// FareFor is what a passenger pays, in euro.
func FareFor(in FareInput) (decimal.Decimal, error) {
	return price(in)
}

// ReimbursementFor is what a driver earns, in euro. It shares the formula
// with FareFor; the two sides only differ by the perk applied.
func ReimbursementFor(in FareInput) (decimal.Decimal, error) {
	return price(in)
}

// ToCredits converts euro to ledger credits (cents), rounding half away
// from zero. Negative amounts clamp to zero.
func ToCredits(euro decimal.Decimal) int64 {
	if euro.IsNegative() {
		return 0
	}
	return euro.Mul(creditsPerEuro).Round(0).IntPart()
}

// CreditsToEuro is the inverse of ToCredits.
func CreditsToEuro(credits int64) decimal.Decimal {
	return decimal.NewFromInt(credits).Div(creditsPerEuro)
}
