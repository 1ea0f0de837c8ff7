package engine

import "errors"

var (
	// ErrZeroAmount rejects quotes for a zero input amount.
	ErrZeroAmount = errors.New("amount must be greater than zero")

	// ErrEmptyReserve rejects quotes against a zero reserve.
	ErrEmptyReserve = errors.New("reserve is empty")

	// ErrZeroOutput rejects quotes whose result truncates to zero.
	ErrZeroOutput = errors.New("computed output is zero")

	// ErrDrainsReserve rejects swap quotes that would empty the output reserve.
	ErrDrainsReserve = errors.New("swap would drain the output reserve")

	// ErrProportionMismatch rejects deposits whose amounts diverge from the
	// pool ratio beyond the tolerance band.
	ErrProportionMismatch = errors.New("deposit proportions diverge from pool ratio")

	// ErrSharesExceedSupply rejects withdrawal quotes for more shares than exist.
	ErrSharesExceedSupply = errors.New("share amount exceeds total shares")
)
