package pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pairpool/internal/engine"
	"pairpool/internal/model"
)

// Deposit pulls (amountA, amountB) from holder into the pool and issues
// shares for the pair. The share quote is computed against the pre-transfer
// reserves before any funds move, so a quote failure aborts with nothing to
// unwind; if the second pull fails the first is refunded.
func (p *Pool) Deposit(holder common.Address, amountA, amountB *big.Int) (*big.Int, error) {
	if err := p.guard.enter(); err != nil {
		return nil, err
	}
	defer p.guard.exit()

	if !positive(amountA) || !positive(amountB) {
		return nil, ErrInvalidAmount
	}

	issued, err := engine.QuoteShareIssue(amountA, amountB, p.totalShares, p.reserveA, p.reserveB, p.tolerance)
	if err != nil {
		return nil, fmt.Errorf("quote share issue: %w", err)
	}

	if err := p.tokens.TransferFrom(p.assetA, holder, p.addr, amountA); err != nil {
		return nil, fmt.Errorf("pull asset A: %w", err)
	}
	if err := p.tokens.TransferFrom(p.assetB, holder, p.addr, amountB); err != nil {
		err = fmt.Errorf("pull asset B: %w", err)
		if refundErr := p.tokens.Transfer(p.assetA, holder, amountA); refundErr != nil {
			return nil, errors.Join(err, fmt.Errorf("refund asset A: %w", refundErr))
		}
		return nil, err
	}

	p.reserveA.Add(p.reserveA, amountA)
	p.reserveB.Add(p.reserveB, amountB)
	p.recomputeK()
	p.totalShares.Add(p.totalShares, issued)
	p.creditShares(holder, issued)

	ts := uint64(p.now().Unix())
	p.logger.Info("deposit",
		zap.String("holder", holder.Hex()),
		zap.String("amount_a", amountA.String()),
		zap.String("amount_b", amountB.String()),
		zap.String("shares_issued", issued.String()),
		zap.String("total_shares", p.totalShares.String()),
	)
	p.emit(model.RecordTypeDeposit, holder, ts, model.DepositRecord{
		AmountA:      amountA.String(),
		AmountB:      amountB.String(),
		SharesIssued: issued.String(),
	})

	return new(big.Int).Set(issued), nil
}

// Swap trades amountIn of assetIn for the opposite asset at the
// constant-product price. The reserve delta and recomputed K are committed
// before either external transfer, so a callback from the token collaborator
// observes post-swap state; a failed transfer restores the snapshot.
func (p *Pool) Swap(holder common.Address, assetIn common.Address, amountIn *big.Int) (*big.Int, error) {
	if err := p.guard.enter(); err != nil {
		return nil, err
	}
	defer p.guard.exit()

	if !positive(amountIn) {
		return nil, ErrInvalidAmount
	}

	var reserveIn, reserveOut *big.Int
	var assetOut common.Address
	switch assetIn {
	case p.assetA:
		reserveIn, reserveOut, assetOut = p.reserveA, p.reserveB, p.assetB
	case p.assetB:
		reserveIn, reserveOut, assetOut = p.reserveB, p.reserveA, p.assetA
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, assetIn.Hex())
	}

	amountOut, err := engine.QuoteSwap(amountIn, reserveIn, reserveOut, p.k)
	if err != nil {
		return nil, fmt.Errorf("quote swap: %w", err)
	}

	snap := p.snapshot(holder)
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, amountOut)
	p.recomputeK()

	if err := p.tokens.TransferFrom(assetIn, holder, p.addr, amountIn); err != nil {
		p.restore(snap)
		return nil, fmt.Errorf("pull input asset: %w", err)
	}
	if err := p.tokens.Transfer(assetOut, holder, amountOut); err != nil {
		p.restore(snap)
		err = fmt.Errorf("push output asset: %w", err)
		if refundErr := p.tokens.Transfer(assetIn, holder, amountIn); refundErr != nil {
			return nil, errors.Join(err, fmt.Errorf("refund input asset: %w", refundErr))
		}
		return nil, err
	}

	ts := uint64(p.now().Unix())
	p.logger.Info("swap",
		zap.String("holder", holder.Hex()),
		zap.String("asset_in", assetIn.Hex()),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", amountOut.String()),
		zap.String("reserve_a", p.reserveA.String()),
		zap.String("reserve_b", p.reserveB.String()),
	)
	p.emit(model.RecordTypeSwap, holder, ts, model.SwapRecord{
		AssetIn:   assetIn.Hex(),
		AmountIn:  amountIn.String(),
		AssetOut:  assetOut.Hex(),
		AmountOut: amountOut.String(),
		ReserveA:  p.reserveA.String(),
		ReserveB:  p.reserveB.String(),
	})

	return new(big.Int).Set(amountOut), nil
}

// Withdraw burns shareAmount of holder's shares and pays out the
// proportional slice of both reserves. The burn and reserve decrements are
// committed before the external pushes; a failed push restores the snapshot,
// and a push that fails after the first payout already landed additionally
// pulls the first payout back (which needs the holder's allowance — a
// failure there is joined into the returned error).
func (p *Pool) Withdraw(holder common.Address, shareAmount *big.Int) (*big.Int, *big.Int, error) {
	if err := p.guard.enter(); err != nil {
		return nil, nil, err
	}
	defer p.guard.exit()

	if !positive(shareAmount) {
		return nil, nil, ErrInvalidAmount
	}
	held := p.shares[holder]
	if held == nil || shareAmount.Cmp(held) > 0 {
		return nil, nil, ErrInsufficientShares
	}

	amountA, amountB, err := engine.QuoteWithdrawal(shareAmount, p.totalShares, p.reserveA, p.reserveB)
	if err != nil {
		return nil, nil, fmt.Errorf("quote withdrawal: %w", err)
	}

	snap := p.snapshot(holder)
	p.debitShares(holder, shareAmount)
	p.totalShares.Sub(p.totalShares, shareAmount)
	p.reserveA.Sub(p.reserveA, amountA)
	p.reserveB.Sub(p.reserveB, amountB)
	p.recomputeK()

	if err := p.tokens.Transfer(p.assetA, holder, amountA); err != nil {
		p.restore(snap)
		return nil, nil, fmt.Errorf("push asset A: %w", err)
	}
	if err := p.tokens.Transfer(p.assetB, holder, amountB); err != nil {
		p.restore(snap)
		err = fmt.Errorf("push asset B: %w", err)
		if recoverErr := p.tokens.TransferFrom(p.assetA, holder, p.addr, amountA); recoverErr != nil {
			return nil, nil, errors.Join(err, fmt.Errorf("recover asset A: %w", recoverErr))
		}
		return nil, nil, err
	}

	ts := uint64(p.now().Unix())
	p.logger.Info("withdraw",
		zap.String("holder", holder.Hex()),
		zap.String("shares_burned", shareAmount.String()),
		zap.String("amount_a", amountA.String()),
		zap.String("amount_b", amountB.String()),
		zap.String("total_shares", p.totalShares.String()),
	)
	p.emit(model.RecordTypeWithdraw, holder, ts, model.WithdrawRecord{
		SharesBurned: shareAmount.String(),
		AmountA:      amountA.String(),
		AmountB:      amountB.String(),
	})

	return amountA, amountB, nil
}

func positive(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}
