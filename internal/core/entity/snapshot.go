package entity

import (
	"time"

	"kardex/internal/core/id"
)

// DetailedBalance is the current balance per full grouping key, including
// every tracking attribute. Unique per key. A pure projection: derivable by
// replaying the ledger history for its key; persisted only to avoid
// O(history) reads on stock queries.
type DetailedBalance struct {
	Key      TrackedKey `json:"key"`
	Balance  Balance    `json:"balance"`
	LastEntryID id.ID   `db:"last_entry_id" json:"lastEntryId"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// GeneralBalance is the current balance per coarse grouping key, carrying the
// weighted-average unit cost. Unique per key. Same projection semantics as
// DetailedBalance.
type GeneralBalance struct {
	Key      GroupKey  `json:"key"`
	Balance  Balance   `json:"balance"`
	LastEntryID id.ID  `db:"last_entry_id" json:"lastEntryId"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
