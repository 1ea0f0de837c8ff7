// Package engine provides the stateless pricing functions for a two-asset
// constant-product pool: swap output, required co-deposit, share issuance,
// and withdrawal split. All arithmetic is integer floor division on big.Int;
// every function fails instead of returning a degenerate value.
package engine

import (
	"math/big"
)

// SharePrecision scales share balances by 10^18 so that fractional share
// accounting works on integer-only math.
var SharePrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// BootstrapShares is the fixed issuance for the very first deposit into an
// empty pool: 100 * SharePrecision. It defines the initial share-to-reserve
// exchange rate.
var BootstrapShares = new(big.Int).Mul(big.NewInt(100), SharePrecision)

// DefaultToleranceDivisor coarsens the two share ratios before comparing
// them in QuoteShareIssue, allowing integer-rounding mismatch while still
// rejecting deposits whose proportions diverge meaningfully.
const DefaultToleranceDivisor = 1000

// QuoteSwap computes the output amount for swapping amountIn of the input
// asset against reserves (reserveIn, reserveOut) holding the product k.
// The output reserve after the swap is k/(reserveIn+amountIn); if the naive
// output would equal the full reserveOut it is decremented by one unit so a
// reserve can never reach zero (the dust-decrement policy).
func QuoteSwap(amountIn, reserveIn, reserveOut, k *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if reserveIn == nil || reserveIn.Sign() == 0 || reserveOut == nil || reserveOut.Sign() == 0 {
		return nil, ErrEmptyReserve
	}

	reserveInAfter := new(big.Int).Add(reserveIn, amountIn)
	reserveOutAfter := new(big.Int).Div(k, reserveInAfter)
	amountOut := new(big.Int).Sub(reserveOut, reserveOutAfter)

	if amountOut.Cmp(reserveOut) == 0 {
		amountOut.Sub(amountOut, big.NewInt(1))
	}
	if amountOut.Sign() <= 0 {
		return nil, ErrZeroOutput
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrDrainsReserve
	}
	return amountOut, nil
}

// QuoteCoDeposit returns the amount of the opposite asset that pairs with
// amountIn at the pool's current ratio: reserveOut * amountIn / reserveIn.
func QuoteCoDeposit(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if reserveIn == nil || reserveIn.Sign() == 0 {
		return nil, ErrEmptyReserve
	}
	out := new(big.Int).Mul(reserveOut, amountIn)
	out.Div(out, reserveIn)
	return out, nil
}

// QuoteShareIssue computes the shares to issue for depositing (amountA,
// amountB) into a pool with the given reserves and share supply.
//
// An empty pool issues BootstrapShares regardless of the deposited amounts.
// Otherwise the two per-asset ratios totalShares*amount/reserve are computed
// independently and must agree after coarsening by toleranceDivisor; the
// A-side ratio is issued. A toleranceDivisor <= 0 falls back to
// DefaultToleranceDivisor.
func QuoteShareIssue(amountA, amountB, totalShares, reserveA, reserveB *big.Int, toleranceDivisor int64) (*big.Int, error) {
	if amountA == nil || amountA.Sign() <= 0 || amountB == nil || amountB.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if totalShares == nil || totalShares.Sign() == 0 {
		return new(big.Int).Set(BootstrapShares), nil
	}
	// A non-empty pool with an exhausted reserve is inconsistent state that
	// the invariants forbid; reject rather than divide by zero.
	if reserveA == nil || reserveA.Sign() == 0 || reserveB == nil || reserveB.Sign() == 0 {
		return nil, ErrEmptyReserve
	}
	if toleranceDivisor <= 0 {
		toleranceDivisor = DefaultToleranceDivisor
	}

	shareA := new(big.Int).Mul(totalShares, amountA)
	shareA.Div(shareA, reserveA)
	shareB := new(big.Int).Mul(totalShares, amountB)
	shareB.Div(shareB, reserveB)

	tol := big.NewInt(toleranceDivisor)
	coarseA := new(big.Int).Div(shareA, tol)
	coarseB := new(big.Int).Div(shareB, tol)
	if coarseA.Cmp(coarseB) != 0 {
		return nil, ErrProportionMismatch
	}
	if shareA.Sign() == 0 {
		return nil, ErrZeroOutput
	}
	return shareA, nil
}

// QuoteWithdrawal splits the reserves proportionally for burning shareAmount
// out of totalShares: amount = reserve * shareAmount / totalShares per asset.
func QuoteWithdrawal(shareAmount, totalShares, reserveA, reserveB *big.Int) (*big.Int, *big.Int, error) {
	if shareAmount == nil || shareAmount.Sign() <= 0 {
		return nil, nil, ErrZeroAmount
	}
	if totalShares == nil || shareAmount.Cmp(totalShares) > 0 {
		return nil, nil, ErrSharesExceedSupply
	}

	amountA := new(big.Int).Mul(reserveA, shareAmount)
	amountA.Div(amountA, totalShares)
	amountB := new(big.Int).Mul(reserveB, shareAmount)
	amountB.Div(amountB, totalShares)

	if amountA.Sign() == 0 || amountB.Sign() == 0 {
		return nil, nil, ErrZeroOutput
	}
	return amountA, amountB, nil
}
