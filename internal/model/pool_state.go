package model

// PoolState is a serializable snapshot of the pool ledger. Reserves, K, and
// share balances are decimal strings so arbitrary-precision values survive
// JSON and database round trips.
type PoolState struct {
	Pool        string            `json:"pool"`
	AssetA      string            `json:"asset_a"`
	AssetB      string            `json:"asset_b"`
	ReserveA    string            `json:"reserve_a"`
	ReserveB    string            `json:"reserve_b"`
	K           string            `json:"k"`
	TotalShares string            `json:"total_shares"`
	Shares      map[string]string `json:"shares"`
}
