package domain

// Snapshot holds the complete registry state.
//
// Accounts keep the per-owner insertion order.
type Snapshot struct {
	Users     []User     `json:"users"`
	Accounts  []Account  `json:"accounts"`
	Transfers []Transfer `json:"transfers"`
}
