// Package token defines the fungible-token collaborator the pool moves
// balances through, plus an in-memory implementation used by the CLI and
// tests. The pool treats the ledger as untrusted: any call may fail, and an
// implementation may call back into the pool before returning.
package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance rejects transfers exceeding the sender's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance rejects pulls exceeding the approved allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Ledger is the external balance book for the pool's two assets.
type Ledger interface {
	// TransferFrom moves amount of asset from holder to recipient against
	// holder's allowance for the recipient.
	TransferFrom(asset, holder, recipient common.Address, amount *big.Int) error

	// Transfer moves amount of asset from the pool's own account to recipient.
	Transfer(asset, recipient common.Address, amount *big.Int) error

	// BalanceOf reports holder's balance of asset.
	BalanceOf(asset, holder common.Address) *big.Int
}

// MemoryLedger keeps balances and allowances for any number of assets in
// process memory. Not safe for concurrent use.
type MemoryLedger struct {
	pool       common.Address
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

// NewMemoryLedger builds an empty ledger whose Transfer calls debit the given
// pool account.
func NewMemoryLedger(pool common.Address) *MemoryLedger {
	return &MemoryLedger{
		pool:       pool,
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Mint credits holder with amount of asset.
func (l *MemoryLedger) Mint(asset, holder common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	bal := l.balance(asset, holder)
	bal.Add(bal, amount)
}

// Approve sets holder's allowance of asset for the pool account.
func (l *MemoryLedger) Approve(asset, holder common.Address, amount *big.Int) {
	byAsset, ok := l.allowances[asset]
	if !ok {
		byAsset = make(map[common.Address]*big.Int)
		l.allowances[asset] = byAsset
	}
	byAsset[holder] = new(big.Int).Set(amount)
}

func (l *MemoryLedger) TransferFrom(asset, holder, recipient common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	allowance := l.allowance(asset, holder)
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: asset %s holder %s", ErrInsufficientAllowance, asset.Hex(), holder.Hex())
	}
	if err := l.move(asset, holder, recipient, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (l *MemoryLedger) Transfer(asset, recipient common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	return l.move(asset, l.pool, recipient, amount)
}

func (l *MemoryLedger) BalanceOf(asset, holder common.Address) *big.Int {
	return new(big.Int).Set(l.balance(asset, holder))
}

func (l *MemoryLedger) move(asset, from, to common.Address, amount *big.Int) error {
	src := l.balance(asset, from)
	if src.Cmp(amount) < 0 {
		return fmt.Errorf("%w: asset %s holder %s", ErrInsufficientBalance, asset.Hex(), from.Hex())
	}
	src.Sub(src, amount)
	dst := l.balance(asset, to)
	dst.Add(dst, amount)
	return nil
}

func (l *MemoryLedger) balance(asset, holder common.Address) *big.Int {
	byAsset, ok := l.balances[asset]
	if !ok {
		byAsset = make(map[common.Address]*big.Int)
		l.balances[asset] = byAsset
	}
	bal, ok := byAsset[holder]
	if !ok {
		bal = big.NewInt(0)
		byAsset[holder] = bal
	}
	return bal
}

func (l *MemoryLedger) allowance(asset, holder common.Address) *big.Int {
	byAsset, ok := l.allowances[asset]
	if !ok {
		byAsset = make(map[common.Address]*big.Int)
		l.allowances[asset] = byAsset
	}
	allowance, ok := byAsset[holder]
	if !ok {
		allowance = big.NewInt(0)
		byAsset[holder] = allowance
	}
	return allowance
}
