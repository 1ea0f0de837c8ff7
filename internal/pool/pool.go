// Package pool owns the two-asset constant-product ledger: reserves, the
// invariant K, and total/per-holder share accounting. The three mutating
// operations (Deposit, Swap, Withdraw) commit their full state delta before
// any external token movement and roll the ledger back if the external leg
// fails, so a completed call is all-or-nothing and a re-entering call only
// ever observes consistent post-operation state.
package pool

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pairpool/internal/engine"
	"pairpool/internal/model"
	"pairpool/internal/storage"
	"pairpool/internal/token"
)

// Options tunes a pool at construction. Zero values select defaults.
type Options struct {
	// ToleranceDivisor coarsens the two share ratios before the proportion
	// check on deposit. Defaults to engine.DefaultToleranceDivisor.
	ToleranceDivisor int64

	// Sink receives one record per successful operation. Optional.
	Sink storage.Sink

	// Logger defaults to a nop logger.
	Logger *zap.Logger

	// Now supplies operation timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Pool is the ledger for one asset pair. It is bound permanently to its two
// assets at construction and is not safe for concurrent use; callers
// serialize operations against one instance.
type Pool struct {
	addr   common.Address
	assetA common.Address
	assetB common.Address

	tokens token.Ledger

	reserveA    *big.Int
	reserveB    *big.Int
	k           *big.Int
	totalShares *big.Int
	shares      map[common.Address]*big.Int

	guard     reentryGuard
	tolerance int64
	sink      storage.Sink
	logger    *zap.Logger
	now       func() time.Time
}

// New builds an empty pool bound to two distinct assets, moving balances
// through tokens under the pool account addr.
func New(addr, assetA, assetB common.Address, tokens token.Ledger, opts Options) (*Pool, error) {
	zero := common.Address{}
	if addr == zero || assetA == zero || assetB == zero {
		return nil, ErrZeroAddress
	}
	if assetA == assetB {
		return nil, ErrIdenticalAssets
	}
	if tokens == nil {
		return nil, fmt.Errorf("token ledger is required")
	}

	tolerance := opts.ToleranceDivisor
	if tolerance <= 0 {
		tolerance = engine.DefaultToleranceDivisor
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Pool{
		addr:        addr,
		assetA:      assetA,
		assetB:      assetB,
		tokens:      tokens,
		reserveA:    big.NewInt(0),
		reserveB:    big.NewInt(0),
		k:           big.NewInt(0),
		totalShares: big.NewInt(0),
		shares:      make(map[common.Address]*big.Int),
		tolerance:   tolerance,
		sink:        opts.Sink,
		logger:      logger,
		now:         now,
	}, nil
}

// Address returns the pool's own account identity.
func (p *Pool) Address() common.Address { return p.addr }

// Assets returns the bound asset pair.
func (p *Pool) Assets() (common.Address, common.Address) { return p.assetA, p.assetB }

// ReserveA returns a copy of the held balance of asset A.
func (p *Pool) ReserveA() *big.Int { return new(big.Int).Set(p.reserveA) }

// ReserveB returns a copy of the held balance of asset B.
func (p *Pool) ReserveB() *big.Int { return new(big.Int).Set(p.reserveB) }

// K returns a copy of the constant-product invariant.
func (p *Pool) K() *big.Int { return new(big.Int).Set(p.k) }

// TotalShares returns a copy of the aggregate share supply.
func (p *Pool) TotalShares() *big.Int { return new(big.Int).Set(p.totalShares) }

// SharesOf returns a copy of holder's share balance.
func (p *Pool) SharesOf(holder common.Address) *big.Int {
	if bal, ok := p.shares[holder]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// CheckInvariants verifies the ledger's structural invariants: the pool is
// either empty or fully funded, K matches the reserve product, and holder
// shares sum to the total supply.
func (p *Pool) CheckInvariants() error {
	funded := p.totalShares.Sign() > 0
	if (p.reserveA.Sign() > 0) != funded || (p.reserveB.Sign() > 0) != funded {
		return fmt.Errorf("pool is neither empty nor fully funded: reserves (%s, %s) total shares %s",
			p.reserveA, p.reserveB, p.totalShares)
	}
	if funded {
		product := new(big.Int).Mul(p.reserveA, p.reserveB)
		if product.Cmp(p.k) != 0 {
			return fmt.Errorf("invariant mismatch: k %s != reserve product %s", p.k, product)
		}
	}
	sum := big.NewInt(0)
	for _, bal := range p.shares {
		sum.Add(sum, bal)
	}
	if sum.Cmp(p.totalShares) != 0 {
		return fmt.Errorf("share supply mismatch: sum %s != total %s", sum, p.totalShares)
	}
	return nil
}

// State snapshots the ledger for persistence.
func (p *Pool) State() model.PoolState {
	shares := make(map[string]string, len(p.shares))
	for holder, bal := range p.shares {
		shares[holder.Hex()] = bal.String()
	}
	return model.PoolState{
		Pool:        p.addr.Hex(),
		AssetA:      p.assetA.Hex(),
		AssetB:      p.assetB.Hex(),
		ReserveA:    p.reserveA.String(),
		ReserveB:    p.reserveB.String(),
		K:           p.k.String(),
		TotalShares: p.totalShares.String(),
		Shares:      shares,
	}
}

// RestoreState loads a previously persisted snapshot into the ledger. The
// snapshot must describe the same pool and asset pair.
func (p *Pool) RestoreState(state model.PoolState) error {
	if state.Pool != p.addr.Hex() || state.AssetA != p.assetA.Hex() || state.AssetB != p.assetB.Hex() {
		return fmt.Errorf("state does not match pool binding: pool %s assets (%s, %s)",
			state.Pool, state.AssetA, state.AssetB)
	}

	reserveA, err := parseAmount(state.ReserveA)
	if err != nil {
		return fmt.Errorf("parse reserve_a: %w", err)
	}
	reserveB, err := parseAmount(state.ReserveB)
	if err != nil {
		return fmt.Errorf("parse reserve_b: %w", err)
	}
	k, err := parseAmount(state.K)
	if err != nil {
		return fmt.Errorf("parse k: %w", err)
	}
	totalShares, err := parseAmount(state.TotalShares)
	if err != nil {
		return fmt.Errorf("parse total_shares: %w", err)
	}

	shares := make(map[common.Address]*big.Int, len(state.Shares))
	for holder, raw := range state.Shares {
		bal, err := parseAmount(raw)
		if err != nil {
			return fmt.Errorf("parse shares[%s]: %w", holder, err)
		}
		if bal.Sign() > 0 {
			shares[common.HexToAddress(holder)] = bal
		}
	}

	p.reserveA = reserveA
	p.reserveB = reserveB
	p.k = k
	p.totalShares = totalShares
	p.shares = shares

	return p.CheckInvariants()
}

// ledgerSnapshot captures the mutable ledger fields touched by one
// operation, for rollback when the external transfer leg fails.
type ledgerSnapshot struct {
	reserveA     *big.Int
	reserveB     *big.Int
	k            *big.Int
	totalShares  *big.Int
	holder       common.Address
	holderShares *big.Int
	holderKnown  bool
}

func (p *Pool) snapshot(holder common.Address) ledgerSnapshot {
	snap := ledgerSnapshot{
		reserveA:    new(big.Int).Set(p.reserveA),
		reserveB:    new(big.Int).Set(p.reserveB),
		k:           new(big.Int).Set(p.k),
		totalShares: new(big.Int).Set(p.totalShares),
		holder:      holder,
	}
	if bal, ok := p.shares[holder]; ok {
		snap.holderShares = new(big.Int).Set(bal)
		snap.holderKnown = true
	}
	return snap
}

func (p *Pool) restore(snap ledgerSnapshot) {
	p.reserveA = snap.reserveA
	p.reserveB = snap.reserveB
	p.k = snap.k
	p.totalShares = snap.totalShares
	if snap.holderKnown {
		p.shares[snap.holder] = snap.holderShares
	} else {
		delete(p.shares, snap.holder)
	}
}

// recomputeK recomputes the invariant from scratch; it is never adjusted
// incrementally.
func (p *Pool) recomputeK() {
	p.k = new(big.Int).Mul(p.reserveA, p.reserveB)
}

func (p *Pool) creditShares(holder common.Address, amount *big.Int) {
	bal, ok := p.shares[holder]
	if !ok {
		bal = big.NewInt(0)
		p.shares[holder] = bal
	}
	bal.Add(bal, amount)
}

func (p *Pool) debitShares(holder common.Address, amount *big.Int) {
	bal := p.shares[holder]
	bal.Sub(bal, amount)
	if bal.Sign() == 0 {
		delete(p.shares, holder)
	}
}

func (p *Pool) emit(recordType string, holder common.Address, ts uint64, payload interface{}) {
	if p.sink == nil {
		return
	}
	record := model.Record{
		Type:      recordType,
		Pool:      p.addr.Hex(),
		Holder:    holder.Hex(),
		Timestamp: ts,
		Decoded:   payload,
	}
	if err := p.sink.PutRecordBatch([]model.Record{record}); err != nil {
		p.logger.Warn("record sink write failed",
			zap.String("type", recordType),
			zap.String("holder", holder.Hex()),
			zap.Error(err),
		)
	}
}

func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}
