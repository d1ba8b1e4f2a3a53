package market

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the relative tolerance used to call two quantities equal.
const DefaultEpsilon = 1e-9

// Outcome classifies a match by which side runs out first.
type Outcome int8

const (
	NoCrossing Outcome = iota
	Surplus            // supply exceeds what the buyer can take: buyer clears
	Balanced           // both clear
	Shortage           // buyer wants more than the seller has: seller clears
)

func (o Outcome) String() string {
	switch o {
	case NoCrossing:
		return "no_crossing"
	case Surplus:
		return "surplus"
	case Balanced:
		return "balanced"
	case Shortage:
		return "shortage"
	default:
		return "unknown"
	}
}

// buyerExhausted and sellerExhausted tell the loop which queue heads to drop.
func (o Outcome) buyerExhausted() bool  { return o == Surplus || o == Balanced }
func (o Outcome) sellerExhausted() bool { return o == Balanced || o == Shortage }

// clearing is the quantity a match moves in each asset.
type clearing struct {
	rate   float64 // midpoint of the two limit rates
	first  float64 // first asset, seller -> buyer
	second float64 // second asset, buyer -> seller
}

// approxEqual compares with a tolerance relative to the larger magnitude, floored at 1.
func approxEqual(a, b, eps float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// cross tests whether a seller and buyer cross and, if so, prices the trade
// at the midpoint of their limits. Seller volume is in the first asset,
// buyer volume in the second.
func cross(sellerRate, sellerVol, buyerRate, buyerVol, eps float64) (clearing, Outcome, error) {
	if sellerRate > buyerRate {
		return clearing{}, NoCrossing, nil
	}

	// halves first so two rates near MaxFloat64 cannot overflow the sum
	rhat := sellerRate/2 + buyerRate/2
	if !finite(rhat) || rhat <= 0 {
		return clearing{}, NoCrossing, fmt.Errorf("%w: midpoint rate %v", ErrClearingDegenerate, rhat)
	}

	// What the buyer's budget buys at rhat, against what the seller holds.
	toBuyer := buyerVol / rhat
	if !finite(toBuyer) {
		return clearing{}, NoCrossing, fmt.Errorf("%w: buyer quantity %v", ErrClearingDegenerate, toBuyer)
	}

	switch {
	case approxEqual(toBuyer, sellerVol, eps):
		return clearing{rate: rhat, first: toBuyer, second: buyerVol}, Balanced, nil
	case toBuyer < sellerVol:
		return clearing{rate: rhat, first: toBuyer, second: buyerVol}, Surplus, nil
	}

	toSeller := sellerVol * rhat
	if !finite(toSeller) {
		return clearing{}, NoCrossing, fmt.Errorf("%w: seller proceeds %v", ErrClearingDegenerate, toSeller)
	}
	return clearing{rate: rhat, first: sellerVol, second: toSeller}, Shortage, nil
}
