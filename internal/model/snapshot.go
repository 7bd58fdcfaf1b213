package model

// ZeroAmount is the placeholder used for any figure that could not be read.
const ZeroAmount = "0"

// PoolSnapshot is a read-only view of the pool and one user's position, in
// display units with four fractional digits.
type PoolSnapshot struct {
	PoolBalance string `json:"pool_balance"`
	UserBalance string `json:"user_balance"`
	UserDebt    string `json:"user_debt"`
}

// ZeroSnapshot is returned when the pool or balance lookup fails.
func ZeroSnapshot() PoolSnapshot {
	return PoolSnapshot{
		PoolBalance: ZeroAmount,
		UserBalance: ZeroAmount,
		UserDebt:    ZeroAmount,
	}
}

// SnapshotRecord is a snapshot as persisted by the watch sinks.
type SnapshotRecord struct {
	Network    string       `json:"network"`
	PoolID     string       `json:"pool_id"`
	User       string       `json:"user"`
	Snapshot   PoolSnapshot `json:"snapshot"`
	Degraded   []string     `json:"degraded,omitempty"`
	ObservedAt string       `json:"observed_at"`
}
