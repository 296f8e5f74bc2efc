// Package rates converts on-chain fixed-point quantities into decimal ratios
// and annualized yields.
package rates

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// SecondsPerYear is a 365-day year, the convention Aave uses for rate math.
const SecondsPerYear = 365 * 24 * 3600

// RayDecimals is the scale of Aave ray values (1e27).
const RayDecimals = 27

// divisionPlaces keeps per-second rates (~1e-9) at full float64 precision.
const divisionPlaces = 40

var secondsPerYear = decimal.NewFromInt(SecondsPerYear)

// ToDecimalRate converts a ray-scaled integer to a decimal ratio.
func ToDecimalRate(ray *big.Int) decimal.Decimal {
	if ray == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(ray, -RayDecimals)
}

// PerSecondRate spreads an annual rate evenly over SecondsPerYear.
func PerSecondRate(annual decimal.Decimal) decimal.Decimal {
	return annual.DivRound(secondsPerYear, divisionPlaces)
}

// Annualize compounds a per-second rate over a year: (1+r)^SecondsPerYear - 1.
//
// The power is evaluated as expm1(n*log1p(r)), which stays accurate for the
// tiny per-second rates involved. r <= -1 is a total loss and returns -1;
// results beyond float64 range saturate at math.MaxFloat64.
func Annualize(perSecond decimal.Decimal) decimal.Decimal {
	r := perSecond.InexactFloat64()
	if r <= -1 {
		return decimal.NewFromInt(-1)
	}

	v := math.Expm1(SecondsPerYear * math.Log1p(r))
	if math.IsInf(v, 1) || math.IsNaN(v) {
		v = math.MaxFloat64
	}
	return decimal.NewFromFloat(v)
}

// SecondsToYears converts a duration in seconds to fractional years.
func SecondsToYears(seconds decimal.Decimal) decimal.Decimal {
	return seconds.DivRound(secondsPerYear, divisionPlaces)
}

// SupplyAPY derives the compounded supply APY from an Aave liquidity rate.
// The ray value is an annual rate; it is split to per-second and compounded.
func SupplyAPY(liquidityRateRay *big.Int) decimal.Decimal {
	return Annualize(PerSecondRate(ToDecimalRate(liquidityRateRay)))
}
