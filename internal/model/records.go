package model

// Record types for emitted pool operation records.
const (
	RecordTypeDeposit  = "deposit"
	RecordTypeSwap     = "swap"
	RecordTypeWithdraw = "withdraw"
)

// Record wraps one emitted operation record for off-chain consumers.
type Record struct {
	Type      string      `json:"type"`
	Pool      string      `json:"pool"`
	Holder    string      `json:"holder"`
	Timestamp uint64      `json:"timestamp"`
	Decoded   interface{} `json:"decoded"`
}

// DepositRecord is the payload emitted after a successful deposit.
type DepositRecord struct {
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesIssued string `json:"shares_issued"`
}

// SwapRecord is the payload emitted after a successful swap. The post-swap
// reserves are included for off-chain price tracking.
type SwapRecord struct {
	AssetIn   string `json:"asset_in"`
	AmountIn  string `json:"amount_in"`
	AssetOut  string `json:"asset_out"`
	AmountOut string `json:"amount_out"`
	ReserveA  string `json:"reserve_a"`
	ReserveB  string `json:"reserve_b"`
}

// WithdrawRecord is the payload emitted after a successful withdrawal.
type WithdrawRecord struct {
	SharesBurned string `json:"shares_burned"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
}
