package pool

import "errors"

var (
	// ErrReentrantCall rejects a nested call into the pool while an
	// operation is already in flight.
	ErrReentrantCall = errors.New("re-entrant pool call rejected")

	// ErrIdenticalAssets rejects construction with the same asset twice.
	ErrIdenticalAssets = errors.New("pool assets must differ")

	// ErrZeroAddress rejects construction with an unset identity.
	ErrZeroAddress = errors.New("address must not be zero")

	// ErrUnknownAsset rejects a swap input asset the pool is not bound to.
	ErrUnknownAsset = errors.New("asset is not bound to this pool")

	// ErrInvalidAmount rejects non-positive operation inputs.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientShares rejects a withdrawal for more shares than the
	// holder owns.
	ErrInsufficientShares = errors.New("share amount exceeds holder balance")
)
