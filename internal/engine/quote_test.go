package engine

import (
	"errors"
	"math/big"
	"testing"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func shares(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), SharePrecision)
}

func TestQuoteSwapKnownReserves(t *testing.T) {
	// Pool (1000, 2000), swap 100 of A: 2000 - 2_000_000/1100 = 2000 - 1818.
	k := new(big.Int).Mul(bi(1000), bi(2000))
	out, err := QuoteSwap(bi(100), bi(1000), bi(2000), k)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Cmp(bi(182)) != 0 {
		t.Fatalf("amount out mismatch: got %s want 182", out)
	}
}

func TestQuoteSwapNeverDrainsReserve(t *testing.T) {
	k := new(big.Int).Mul(bi(1000), bi(1000))
	out, err := QuoteSwap(bi(1000), bi(1000), bi(1000), k)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Sign() == 0 {
		t.Fatalf("amount out must not be zero")
	}
	if out.Cmp(bi(1000)) >= 0 {
		t.Fatalf("amount out %s must be below the full reserve", out)
	}
}

func TestQuoteSwapDustDecrement(t *testing.T) {
	// An input large enough that k/(reserveIn+amountIn) floors to zero would
	// naively drain the output reserve; the quote gives back reserve-1.
	k := new(big.Int).Mul(bi(10), bi(10))
	out, err := QuoteSwap(bi(1000), bi(10), bi(10), k)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Cmp(bi(9)) != 0 {
		t.Fatalf("dust decrement mismatch: got %s want 9", out)
	}
}

func TestQuoteSwapRejectsInvalidInputs(t *testing.T) {
	k := new(big.Int).Mul(bi(1000), bi(1000))

	if _, err := QuoteSwap(bi(0), bi(1000), bi(1000), k); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := QuoteSwap(bi(10), bi(0), bi(1000), k); !errors.Is(err, ErrEmptyReserve) {
		t.Fatalf("expected ErrEmptyReserve, got %v", err)
	}
	if _, err := QuoteSwap(bi(10), bi(1000), bi(0), k); !errors.Is(err, ErrEmptyReserve) {
		t.Fatalf("expected ErrEmptyReserve, got %v", err)
	}
	// The naive output equals the whole one-unit output reserve; the dust
	// decrement drops it to zero.
	thinK := new(big.Int).Mul(bi(1_000_000), bi(1))
	if _, err := QuoteSwap(bi(1), bi(1_000_000), bi(1), thinK); !errors.Is(err, ErrZeroOutput) {
		t.Fatalf("expected ErrZeroOutput, got %v", err)
	}
}

func TestQuoteSwapProductWithinFloorSlack(t *testing.T) {
	// Floor division keeps the post-swap product at most K, short by less
	// than one unit of the grown input reserve:
	//   K - (reserveIn + amountIn) < product_after <= K
	// with equality only when the division is exact. (The dust decrement,
	// when it fires, hands one output unit back to the pool and can lift
	// the product above K; none of these trades hit that path.)
	cases := []struct {
		reserveIn, reserveOut, amountIn int64
	}{
		{1000, 2000, 100},
		{1000, 1000, 1000},
		{12345, 67890, 777},
		{5, 5, 3},
	}
	for _, tc := range cases {
		before := new(big.Int).Mul(bi(tc.reserveIn), bi(tc.reserveOut))
		out, err := QuoteSwap(bi(tc.amountIn), bi(tc.reserveIn), bi(tc.reserveOut), before)
		if err != nil {
			t.Fatalf("quote (%d,%d,%d): %v", tc.reserveIn, tc.reserveOut, tc.amountIn, err)
		}
		reserveInAfter := bi(tc.reserveIn + tc.amountIn)
		after := new(big.Int).Mul(
			reserveInAfter,
			new(big.Int).Sub(bi(tc.reserveOut), out),
		)
		if after.Cmp(before) > 0 {
			t.Fatalf("product exceeded k: before %s after %s", before, after)
		}
		lower := new(big.Int).Sub(before, reserveInAfter)
		if after.Cmp(lower) <= 0 {
			t.Fatalf("product lost more than floor slack: before %s after %s", before, after)
		}
	}
}

func TestQuoteCoDeposit(t *testing.T) {
	out, err := QuoteCoDeposit(bi(500), bi(1000), bi(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Cmp(bi(1000)) != 0 {
		t.Fatalf("co-deposit mismatch: got %s want 1000", out)
	}

	if _, err := QuoteCoDeposit(bi(0), bi(1000), bi(2000)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := QuoteCoDeposit(bi(500), bi(0), bi(2000)); !errors.Is(err, ErrEmptyReserve) {
		t.Fatalf("expected ErrEmptyReserve, got %v", err)
	}
}

func TestQuoteShareIssueBootstrap(t *testing.T) {
	got, err := QuoteShareIssue(bi(1000), bi(2000), bi(0), bi(0), bi(0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(BootstrapShares) != 0 {
		t.Fatalf("bootstrap issuance mismatch: got %s want %s", got, BootstrapShares)
	}
}

func TestQuoteShareIssueProportional(t *testing.T) {
	total := shares(100)
	got, err := QuoteShareIssue(bi(500), bi(1000), total, bi(1000), bi(2000), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(shares(50)) != 0 {
		t.Fatalf("share issuance mismatch: got %s want %s", got, shares(50))
	}
}

func TestQuoteShareIssueProportionMismatch(t *testing.T) {
	// (500, 999) against (1000, 2000): 50e18 vs 49.95e18 diverge beyond the
	// coarsened comparison.
	total := shares(100)
	if _, err := QuoteShareIssue(bi(500), bi(999), total, bi(1000), bi(2000), 0); !errors.Is(err, ErrProportionMismatch) {
		t.Fatalf("expected ErrProportionMismatch, got %v", err)
	}
}

func TestQuoteShareIssueExhaustedReserve(t *testing.T) {
	total := shares(100)
	if _, err := QuoteShareIssue(bi(500), bi(1000), total, bi(0), bi(2000), 0); !errors.Is(err, ErrEmptyReserve) {
		t.Fatalf("expected ErrEmptyReserve, got %v", err)
	}
}

func TestQuoteWithdrawal(t *testing.T) {
	total := shares(100)
	amountA, amountB, err := QuoteWithdrawal(shares(50), total, bi(1000), bi(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amountA.Cmp(bi(500)) != 0 || amountB.Cmp(bi(1000)) != 0 {
		t.Fatalf("withdrawal split mismatch: got (%s, %s) want (500, 1000)", amountA, amountB)
	}
}

func TestQuoteWithdrawalRejectsInvalidInputs(t *testing.T) {
	total := shares(100)
	if _, _, err := QuoteWithdrawal(bi(0), total, bi(1000), bi(2000)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	over := new(big.Int).Add(total, bi(1))
	if _, _, err := QuoteWithdrawal(over, total, bi(1000), bi(2000)); !errors.Is(err, ErrSharesExceedSupply) {
		t.Fatalf("expected ErrSharesExceedSupply, got %v", err)
	}
	// A sliver of shares too small to claim a unit of either reserve.
	if _, _, err := QuoteWithdrawal(bi(1), total, bi(1000), bi(2000)); !errors.Is(err, ErrZeroOutput) {
		t.Fatalf("expected ErrZeroOutput, got %v", err)
	}
}
